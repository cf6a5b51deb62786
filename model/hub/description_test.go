package hub

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pushmesh/hub-sdk-go/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDescription(t *testing.T) {
	cases := map[string]struct {
		path string
		err  error
	}{
		"ok": {
			path: "alerts",
		},
		"max length": {
			path: strings.Repeat("a", MaxPathLength),
		},
		"blank": {
			path: "",
			err:  model.ErrInvalidArgument,
		},
		"whitespace only": {
			path: " \t ",
			err:  model.ErrInvalidArgument,
		},
		"over max length": {
			path: strings.Repeat("a", MaxPathLength+1),
			err:  model.ErrInvalidArgument,
		},
	}
	for k, c := range cases {
		t.Run(k, func(t *testing.T) {
			d, err := NewDescription(c.path)
			assert.ErrorIs(t, err, c.err)
			if c.err == nil {
				assert.Equal(t, c.path, d.Path())
			}
		})
	}
}

func TestDescription_SetPath(t *testing.T) {
	d, err := NewDescription("alerts")
	require.Nil(t, err)
	assert.ErrorIs(t, d.SetPath(""), model.ErrInvalidArgument)
	assert.Equal(t, "alerts", d.Path())
	assert.Nil(t, d.SetPath("alerts-eu"))
	assert.Equal(t, "alerts-eu", d.Path())
}

func TestDescription_Authorization(t *testing.T) {
	d, err := NewDescription("alerts")
	require.Nil(t, err)
	rules := d.Authorization()
	require.NotNil(t, rules)
	assert.Equal(t, 0, rules.Len())
	assert.Same(t, rules, d.Authorization())
}

func TestDescription_RegistrationTtl(t *testing.T) {
	d, err := NewDescription("alerts")
	require.Nil(t, err)
	assert.Equal(t, DefaultRegistrationTtl, d.RegistrationTtl())
	err = d.SetRegistrationTtl(MinRegistrationTtl - time.Second)
	assert.ErrorIs(t, err, model.ErrOutOfRange)
	assert.Equal(t, DefaultRegistrationTtl, d.RegistrationTtl())
	assert.Nil(t, d.SetRegistrationTtl(48*time.Hour))
	assert.Equal(t, 48*time.Hour, d.RegistrationTtl())
}

func TestDescription_SetAccessPassword(t *testing.T) {
	d, err := NewDescription("alerts")
	require.Nil(t, err)
	require.Nil(t, d.SetAccessPassword("ruleA", "pw1", RightListen))
	require.Nil(t, d.SetAccessPassword("ruleA", "pw2", RightListen|RightSend))
	assert.Equal(t, 1, d.Authorization().Len())
	r, found := d.Authorization().Get("ruleA")
	require.True(t, found)
	assert.Equal(t, "pw2", r.PrimaryKey)
	assert.Equal(t, RightListen|RightSend, r.Rights)
	//
	assert.ErrorIs(t, d.SetAccessPassword("", "pw", RightListen), model.ErrInvalidArgument)
	assert.ErrorIs(t, d.SetAccessPassword("ruleB", " ", RightListen), model.ErrInvalidArgument)
	assert.Equal(t, 1, d.Authorization().Len())
}

func TestDescription_SetAccessPasswords(t *testing.T) {
	d, err := NewDescription("alerts")
	require.Nil(t, err)
	require.Nil(t, d.SetAccessPasswords("full", "p1", "listen", "p2"))
	assert.Equal(t, 2, d.Authorization().Len())
	full, found := d.Authorization().Get("full")
	require.True(t, found)
	assert.Equal(t, "p1", full.PrimaryKey)
	assert.Equal(t, RightsFull, full.Rights)
	listen, found := d.Authorization().Get("listen")
	require.True(t, found)
	assert.Equal(t, "p2", listen.PrimaryKey)
	assert.Equal(t, RightListen, listen.Rights)
}

func TestDescription_SetAccessPasswordConcurrent(t *testing.T) {
	d, err := NewDescription("alerts")
	require.Nil(t, err)
	names := []string{"listen", "send", "manage", "full"}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := names[i%len(names)]
			assert.Nil(t, d.SetAccessPassword(name, fmt.Sprintf("pw%d", i), RightListen))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, len(names), d.Authorization().Len())
	for _, name := range names {
		r, found := d.Authorization().Get(name)
		require.True(t, found)
		assert.NotEmpty(t, r.PrimaryKey)
		assert.Equal(t, RightListen, r.Rights)
	}
}

func TestDescription_SetAccessPasswordsAllOrNothing(t *testing.T) {
	d, err := NewDescription("alerts")
	require.Nil(t, err)
	err = d.SetAccessPasswords("full", "p1", "listen", "")
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	assert.Equal(t, 0, d.Authorization().Len())
}

func TestDescription_UserMetadata(t *testing.T) {
	d, err := NewDescription("alerts")
	require.Nil(t, err)
	md, present := d.UserMetadata()
	assert.False(t, present)
	assert.Empty(t, md)
	//
	require.Nil(t, d.SetUserMetadata("team=push"))
	md, present = d.UserMetadata()
	assert.True(t, present)
	assert.Equal(t, "team=push", md)
	//
	err = d.SetUserMetadata(strings.Repeat("x", MaxUserMetadataLength+1))
	assert.ErrorIs(t, err, model.ErrOutOfRange)
	md, present = d.UserMetadata()
	assert.True(t, present)
	assert.Equal(t, "team=push", md)
	//
	require.Nil(t, d.SetUserMetadata(" \n "))
	_, present = d.UserMetadata()
	assert.False(t, present)
}

func TestDescription_Disabled(t *testing.T) {
	d, err := NewDescription("alerts")
	require.Nil(t, err)
	assert.False(t, d.IsDisabled())
	require.Nil(t, d.SetDisabled(true))
	assert.True(t, d.IsDisabled())
	require.Nil(t, d.SetDisabled(false))
	assert.False(t, d.IsDisabled())
}

func TestDescription_Constants(t *testing.T) {
	d, err := NewDescription("alerts")
	require.Nil(t, err)
	assert.False(t, d.IsAnonymouslyAccessible())
	assert.True(t, d.RequiresEncryption())
	require.Nil(t, d.SetDisabled(true))
	assert.False(t, d.IsAnonymouslyAccessible())
	assert.True(t, d.RequiresEncryption())
}

func TestDescription_Frozen(t *testing.T) {
	d, err := NewDescription("alerts")
	require.Nil(t, err)
	require.Nil(t, d.SetUserMetadata("team=push"))
	require.Nil(t, d.SetRegistrationTtl(48*time.Hour))
	d.Freeze()
	//
	assert.ErrorIs(t, d.SetPath("other"), model.ErrReadOnly)
	assert.ErrorIs(t, d.SetRegistrationTtl(72*time.Hour), model.ErrReadOnly)
	assert.ErrorIs(t, d.SetUserMetadata("changed"), model.ErrReadOnly)
	assert.ErrorIs(t, d.SetDisabled(true), model.ErrReadOnly)
	assert.ErrorIs(t, d.SetFcmCredential(NewFcmCredential("{}")), model.ErrReadOnly)
	assert.ErrorIs(t, d.SetAccessPassword("rule", "pw", RightListen), model.ErrReadOnly)
	assert.ErrorIs(t, d.SetAccessPasswords("f", "p1", "l", "p2"), model.ErrReadOnly)
	//
	assert.Equal(t, "alerts", d.Path())
	assert.Equal(t, 48*time.Hour, d.RegistrationTtl())
	md, present := d.UserMetadata()
	assert.True(t, present)
	assert.Equal(t, "team=push", md)
	assert.False(t, d.IsDisabled())
	assert.Nil(t, d.FcmCredential())
	assert.Equal(t, 0, d.Authorization().Len())
}

func TestDescription_Clone(t *testing.T) {
	d, err := NewDescription("alerts")
	require.Nil(t, err)
	require.Nil(t, d.SetAccessPassword("rule", "pw", RightListen))
	require.Nil(t, d.SetApnsCredential(NewApnsCredential("key", "team", "bundle", "token")))
	require.Nil(t, d.SetUserMetadata("team=push"))
	d.Freeze()
	//
	c := d.Clone()
	assert.False(t, c.Frozen())
	assert.Equal(t, "alerts", c.Path())
	assert.Nil(t, c.SetUserMetadata("changed"))
	md, _ := d.UserMetadata()
	assert.Equal(t, "team=push", md)
	// rule copies are independent
	require.Nil(t, c.SetAccessPassword("rule", "pw2", RightsFull))
	orig, found := d.Authorization().Get("rule")
	require.True(t, found)
	assert.Equal(t, "pw", orig.PrimaryKey)
	// credential copies are independent values
	assert.NotSame(t, d.ApnsCredential(), c.ApnsCredential())
	v, found := c.ApnsCredential().Property(PropApnsTeamId)
	require.True(t, found)
	assert.Equal(t, "team", v)
}
