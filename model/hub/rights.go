package hub

import (
	"fmt"
	"strings"

	"github.com/pushmesh/hub-sdk-go/model"
)

// Rights is the capability set an authorization rule grants.
type Rights uint8

const (
	RightListen Rights = 1 << iota
	RightSend
	RightManage
)

const RightsFull = RightListen | RightSend | RightManage

func (r Rights) Has(want Rights) bool {
	return r&want == want
}

func (r Rights) Names() (names []string) {
	if r.Has(RightListen) {
		names = append(names, "Listen")
	}
	if r.Has(RightSend) {
		names = append(names, "Send")
	}
	if r.Has(RightManage) {
		names = append(names, "Manage")
	}
	return
}

func (r Rights) String() string {
	return strings.Join(r.Names(), "|")
}

func ParseRight(name string) (r Rights, err error) {
	switch name {
	case "Listen":
		r = RightListen
	case "Send":
		r = RightSend
	case "Manage":
		r = RightManage
	default:
		err = fmt.Errorf("%w: unknown access right %q", model.ErrInvalidArgument, name)
	}
	return
}
