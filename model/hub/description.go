package hub

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pushmesh/hub-sdk-go/model"
)

const (
	// MaxPathLength is the longest hub path the service accepts.
	MaxPathLength = 260

	// MaxUserMetadataLength bounds the free-form user metadata.
	MaxUserMetadataLength = 1024

	// DefaultRegistrationTtl applies when no explicit ttl was ever set.
	DefaultRegistrationTtl = 90 * 24 * time.Hour

	// MinRegistrationTtl is the shortest registration lifetime the
	// service supports.
	MinRegistrationTtl = 24 * time.Hour
)

// Description configures a single notification hub resource: its path,
// per-platform push credentials, authorization rules, registration ttl,
// status and user metadata, plus the read-only daily usage counters the
// service reports back.
//
// A Description is not synchronized except for the SetAccessPassword
// mutation path. Callers sharing an instance across goroutines serialize
// the other setters themselves.
type Description struct {
	model.Entity

	path            string
	rules           *RuleSet
	registrationTtl *time.Duration
	disabled        *bool
	userMetadata    *string

	apnsCredential  *Credential
	wnsCredential   *Credential
	fcmCredential   *Credential
	mpnsCredential  *Credential
	admCredential   *Credential
	baiduCredential *Credential

	dailyOperations             int64
	dailyMaxActiveDevices       int64
	dailyMaxActiveRegistrations int64

	mx sync.Mutex
}

func NewDescription(path string) (d *Description, err error) {
	err = validatePath(path)
	if err == nil {
		d = &Description{
			path: path,
		}
	}
	return
}

func validatePath(path string) (err error) {
	switch {
	case strings.TrimSpace(path) == "":
		err = fmt.Errorf("%w: hub path is blank", model.ErrInvalidArgument)
	case len(path) > MaxPathLength:
		err = fmt.Errorf("%w: hub path exceeds %d characters", model.ErrInvalidArgument, MaxPathLength)
	}
	return
}

func requireNonBlank(what, value string) (err error) {
	if strings.TrimSpace(value) == "" {
		err = fmt.Errorf("%w: %s is blank", model.ErrInvalidArgument, what)
	}
	return
}

func (d *Description) Path() string {
	return d.path
}

func (d *Description) SetPath(path string) (err error) {
	err = d.CheckMutable()
	if err == nil {
		err = validatePath(path)
	}
	if err == nil {
		d.path = path
	}
	return
}

// Authorization returns the rule set of the hub, materializing an empty
// one on first access. Every call returns the same instance.
func (d *Description) Authorization() *RuleSet {
	return d.authorization()
}

func (d *Description) authorization() *RuleSet {
	if d.rules == nil {
		d.rules = &RuleSet{}
	}
	return d.rules
}

// SetAccessPassword upserts the rule named ruleName: an existing rule gets
// its key and rights overwritten in place, otherwise a new rule is
// inserted. The rule set mutation is lock-guarded so concurrent callers
// sharing the instance do not race on the lazy init.
func (d *Description) SetAccessPassword(ruleName, password string, rights Rights) (err error) {
	err = d.CheckMutable()
	if err == nil {
		err = requireNonBlank("rule name", ruleName)
	}
	if err == nil {
		err = requireNonBlank("password", password)
	}
	if err == nil {
		d.mx.Lock()
		defer d.mx.Unlock()
		rules := d.authorization()
		now := time.Now().UTC()
		r, found := rules.Get(ruleName)
		switch {
		case found:
			r.PrimaryKey = password
			r.Rights = rights
			r.Modified = now
		default:
			rules.Upsert(&AuthorizationRule{
				KeyName:    ruleName,
				PrimaryKey: password,
				Rights:     rights,
				Created:    now,
				Modified:   now,
			})
		}
	}
	return
}

// SetAccessPasswords upserts the conventional rule pair: one full rule
// granting Listen|Send|Manage and one listen-only rule. All four
// parameters are validated before the first upsert runs, so a failure
// never leaves a partial result.
func (d *Description) SetAccessPasswords(fullRuleName, fullPassword, listenRuleName, listenPassword string) (err error) {
	err = d.CheckMutable()
	if err == nil {
		err = requireNonBlank("full rule name", fullRuleName)
	}
	if err == nil {
		err = requireNonBlank("full rule password", fullPassword)
	}
	if err == nil {
		err = requireNonBlank("listen rule name", listenRuleName)
	}
	if err == nil {
		err = requireNonBlank("listen rule password", listenPassword)
	}
	if err == nil {
		err = d.SetAccessPassword(fullRuleName, fullPassword, RightsFull)
	}
	if err == nil {
		err = d.SetAccessPassword(listenRuleName, listenPassword, RightListen)
	}
	return
}

// RegistrationTtl returns the registration lifetime, assigning the
// platform default on first access when none was set.
func (d *Description) RegistrationTtl() time.Duration {
	if d.registrationTtl == nil {
		ttl := DefaultRegistrationTtl
		d.registrationTtl = &ttl
	}
	return *d.registrationTtl
}

func (d *Description) SetRegistrationTtl(ttl time.Duration) (err error) {
	err = d.CheckMutable()
	if err == nil && ttl < MinRegistrationTtl {
		err = fmt.Errorf("%w: registration ttl %s is below the minimum %s", model.ErrOutOfRange, ttl, MinRegistrationTtl)
	}
	if err == nil {
		d.registrationTtl = &ttl
	}
	return
}

// IsDisabled reports whether the hub is administratively disabled. While
// disabled, the service rejects all registration management and send
// operations against the hub with a forbidden response.
func (d *Description) IsDisabled() bool {
	return d.disabled != nil && *d.disabled
}

func (d *Description) SetDisabled(disabled bool) (err error) {
	err = d.CheckMutable()
	if err == nil {
		d.disabled = &disabled
	}
	return
}

// IsAnonymouslyAccessible is constant for hubs: anonymous access is never
// granted.
func (d *Description) IsAnonymouslyAccessible() bool {
	return false
}

// RequiresEncryption is constant for hubs: transport encryption is always
// required.
func (d *Description) RequiresEncryption() bool {
	return true
}

func (d *Description) UserMetadata() (md string, present bool) {
	if d.userMetadata != nil {
		md, present = *d.userMetadata, true
	}
	return
}

// SetUserMetadata stores the free-form metadata verbatim. A blank value
// clears it to absent.
func (d *Description) SetUserMetadata(md string) (err error) {
	err = d.CheckMutable()
	if err == nil && strings.TrimSpace(md) == "" {
		d.userMetadata = nil
		return
	}
	if err == nil && len(md) > MaxUserMetadataLength {
		err = fmt.Errorf("%w: user metadata exceeds %d characters", model.ErrOutOfRange, MaxUserMetadataLength)
	}
	if err == nil {
		d.userMetadata = &md
	}
	return
}

func (d *Description) ApnsCredential() *Credential {
	return d.apnsCredential
}

func (d *Description) SetApnsCredential(c *Credential) (err error) {
	err = d.CheckMutable()
	if err == nil {
		d.apnsCredential = c
	}
	return
}

func (d *Description) WnsCredential() *Credential {
	return d.wnsCredential
}

func (d *Description) SetWnsCredential(c *Credential) (err error) {
	err = d.CheckMutable()
	if err == nil {
		d.wnsCredential = c
	}
	return
}

func (d *Description) FcmCredential() *Credential {
	return d.fcmCredential
}

func (d *Description) SetFcmCredential(c *Credential) (err error) {
	err = d.CheckMutable()
	if err == nil {
		d.fcmCredential = c
	}
	return
}

func (d *Description) MpnsCredential() *Credential {
	return d.mpnsCredential
}

func (d *Description) SetMpnsCredential(c *Credential) (err error) {
	err = d.CheckMutable()
	if err == nil {
		d.mpnsCredential = c
	}
	return
}

func (d *Description) AdmCredential() *Credential {
	return d.admCredential
}

func (d *Description) SetAdmCredential(c *Credential) (err error) {
	err = d.CheckMutable()
	if err == nil {
		d.admCredential = c
	}
	return
}

func (d *Description) BaiduCredential() *Credential {
	return d.baiduCredential
}

func (d *Description) SetBaiduCredential(c *Credential) (err error) {
	err = d.CheckMutable()
	if err == nil {
		d.baiduCredential = c
	}
	return
}

// Daily usage counters are reported by the service and populated only by
// the wire decode path of the management client.

func (d *Description) DailyOperations() int64 {
	return d.dailyOperations
}

func (d *Description) DailyMaxActiveDevices() int64 {
	return d.dailyMaxActiveDevices
}

func (d *Description) DailyMaxActiveRegistrations() int64 {
	return d.dailyMaxActiveRegistrations
}

// Clone returns an unfrozen deep copy, the way to edit a description that
// became read-only after creation.
func (d *Description) Clone() (c *Description) {
	c = &Description{
		path:                        d.path,
		dailyOperations:             d.dailyOperations,
		dailyMaxActiveDevices:       d.dailyMaxActiveDevices,
		dailyMaxActiveRegistrations: d.dailyMaxActiveRegistrations,
	}
	if d.rules != nil {
		c.rules = d.rules.clone()
	}
	if d.registrationTtl != nil {
		ttl := *d.registrationTtl
		c.registrationTtl = &ttl
	}
	if d.disabled != nil {
		disabled := *d.disabled
		c.disabled = &disabled
	}
	if d.userMetadata != nil {
		md := *d.userMetadata
		c.userMetadata = &md
	}
	c.apnsCredential = d.apnsCredential.Clone()
	c.wnsCredential = d.wnsCredential.Clone()
	c.fcmCredential = d.fcmCredential.Clone()
	c.mpnsCredential = d.mpnsCredential.Clone()
	c.admCredential = d.admCredential.Clone()
	c.baiduCredential = d.baiduCredential.Clone()
	return
}
