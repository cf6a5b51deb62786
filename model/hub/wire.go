package hub

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pushmesh/hub-sdk-go/model"
	"github.com/pushmesh/hub-sdk-go/wire"
)

// Namespace is the fixed namespace of hub documents on the management API.
const Namespace = "http://schemas.pushmesh.io/2024/06/hubs"

// Logical field names of the hub description schema.
const (
	FieldPath                        = "path"
	FieldRegistrationTtl             = "registrationTtl"
	FieldAuthorizationRules          = "authorizationRules"
	FieldApnsCredential              = "apnsCredential"
	FieldWnsCredential               = "wnsCredential"
	FieldFcmCredential               = "fcmCredential"
	FieldMpnsCredential              = "mpnsCredential"
	FieldAdmCredential               = "admCredential"
	FieldBaiduCredential             = "baiduCredential"
	FieldDisabled                    = "disabled"
	FieldUserMetadata                = "userMetadata"
	FieldDailyOperations             = "dailyOperations"
	FieldDailyMaxActiveDevices       = "dailyMaxActiveDevices"
	FieldDailyMaxActiveRegistrations = "dailyMaxActiveRegistrations"
)

const (
	elemAuthorizationRule = "AuthorizationRule"
	elemKeyName           = "KeyName"
	elemPrimaryKey        = "PrimaryKey"
	elemSecondaryKey      = "SecondaryKey"
	elemRights            = "Rights"
	elemAccessRight       = "AccessRight"
	elemCreated           = "CreatedTime"
	elemModified          = "ModifiedTime"
	elemProperty          = "Property"
	elemPropertyName      = "Name"
	elemPropertyValue     = "Value"
)

// descriptionSchema fixes the element order of the serialized form. Every
// field carries its own order key and all fields are skipped on the wire
// when absent.
var descriptionSchema = wire.MustSchema("HubDescription", Namespace,
	wire.Field{Name: FieldPath, Wire: "Path", Order: 10},
	wire.Field{Name: FieldRegistrationTtl, Wire: "RegistrationTtl", Order: 20},
	wire.Field{Name: FieldAuthorizationRules, Wire: "AuthorizationRules", Order: 30},
	wire.Field{Name: FieldApnsCredential, Wire: "ApnsCredential", Order: 40},
	wire.Field{Name: FieldWnsCredential, Wire: "WnsCredential", Order: 50},
	wire.Field{Name: FieldFcmCredential, Wire: "FcmCredential", Order: 60},
	wire.Field{Name: FieldMpnsCredential, Wire: "MpnsCredential", Order: 70},
	wire.Field{Name: FieldAdmCredential, Wire: "AdmCredential", Order: 80},
	wire.Field{Name: FieldBaiduCredential, Wire: "BaiduCredential", Order: 90},
	wire.Field{Name: FieldDisabled, Wire: "Disabled", Order: 100},
	wire.Field{Name: FieldUserMetadata, Wire: "UserMetadata", Order: 110},
	wire.Field{Name: FieldDailyOperations, Wire: "DailyOperations", Order: 120},
	wire.Field{Name: FieldDailyMaxActiveDevices, Wire: "DailyMaxActiveDevices", Order: 130},
	wire.Field{Name: FieldDailyMaxActiveRegistrations, Wire: "DailyMaxActiveRegistrations", Order: 140},
)

// DescriptionSchema exposes the hub document schema to collaborating
// serializers, e.g. the emulator.
func DescriptionSchema() wire.Schema {
	return descriptionSchema
}

// WireRecord projects the description into its generic document form,
// omitting absent optional fields and zero counters.
func (d *Description) WireRecord() (rec wire.Record) {
	rec = wire.Record{
		FieldPath: wire.Value{Text: d.path},
	}
	if d.registrationTtl != nil {
		rec[FieldRegistrationTtl] = wire.Value{Text: d.registrationTtl.String()}
	}
	if d.rules != nil && d.rules.Len() > 0 {
		rec[FieldAuthorizationRules] = wire.Value{Nodes: rulesToNodes(d.rules)}
	}
	for _, b := range []struct {
		field string
		cred  *Credential
	}{
		{FieldApnsCredential, d.apnsCredential},
		{FieldWnsCredential, d.wnsCredential},
		{FieldFcmCredential, d.fcmCredential},
		{FieldMpnsCredential, d.mpnsCredential},
		{FieldAdmCredential, d.admCredential},
		{FieldBaiduCredential, d.baiduCredential},
	} {
		if b.cred != nil {
			rec[b.field] = wire.Value{Nodes: credentialToNodes(b.cred)}
		}
	}
	if d.disabled != nil {
		rec[FieldDisabled] = wire.Value{Text: strconv.FormatBool(*d.disabled)}
	}
	if d.userMetadata != nil {
		rec[FieldUserMetadata] = wire.Value{Text: *d.userMetadata}
	}
	if d.dailyOperations > 0 {
		rec[FieldDailyOperations] = wire.Value{Text: strconv.FormatInt(d.dailyOperations, 10)}
	}
	if d.dailyMaxActiveDevices > 0 {
		rec[FieldDailyMaxActiveDevices] = wire.Value{Text: strconv.FormatInt(d.dailyMaxActiveDevices, 10)}
	}
	if d.dailyMaxActiveRegistrations > 0 {
		rec[FieldDailyMaxActiveRegistrations] = wire.Value{Text: strconv.FormatInt(d.dailyMaxActiveRegistrations, 10)}
	}
	return
}

// DescriptionFromRecord rebuilds a description from its document form.
// This is the only path that populates the daily usage counters.
func DescriptionFromRecord(rec wire.Record) (d *Description, err error) {
	pathVal, present := rec[FieldPath]
	if !present {
		err = fmt.Errorf("%w: hub document carries no path", model.ErrInvalidArgument)
	}
	if err == nil {
		d, err = NewDescription(pathVal.Text)
	}
	if err == nil {
		if v, ok := rec[FieldRegistrationTtl]; ok {
			var ttl time.Duration
			ttl, err = time.ParseDuration(v.Text)
			if err != nil {
				err = fmt.Errorf("%w: bad registration ttl %q", model.ErrInvalidArgument, v.Text)
			}
			if err == nil {
				err = d.SetRegistrationTtl(ttl)
			}
		}
	}
	if err == nil {
		if v, ok := rec[FieldAuthorizationRules]; ok {
			err = rulesFromNodes(d.authorization(), v.Children(elemAuthorizationRule))
		}
	}
	if err == nil {
		for _, b := range []struct {
			field string
			set   func(*Credential) error
		}{
			{FieldApnsCredential, d.SetApnsCredential},
			{FieldWnsCredential, d.SetWnsCredential},
			{FieldFcmCredential, d.SetFcmCredential},
			{FieldMpnsCredential, d.SetMpnsCredential},
			{FieldAdmCredential, d.SetAdmCredential},
			{FieldBaiduCredential, d.SetBaiduCredential},
		} {
			if v, ok := rec[b.field]; ok {
				err = b.set(credentialFromNodes(v.Nodes))
				if err != nil {
					break
				}
			}
		}
	}
	if err == nil {
		if v, ok := rec[FieldDisabled]; ok {
			var disabled bool
			disabled, err = strconv.ParseBool(v.Text)
			if err != nil {
				err = fmt.Errorf("%w: bad status flag %q", model.ErrInvalidArgument, v.Text)
			}
			if err == nil {
				err = d.SetDisabled(disabled)
			}
		}
	}
	if err == nil {
		if v, ok := rec[FieldUserMetadata]; ok {
			err = d.SetUserMetadata(v.Text)
		}
	}
	if err == nil {
		d.dailyOperations, err = counterFromRecord(rec, FieldDailyOperations)
	}
	if err == nil {
		d.dailyMaxActiveDevices, err = counterFromRecord(rec, FieldDailyMaxActiveDevices)
	}
	if err == nil {
		d.dailyMaxActiveRegistrations, err = counterFromRecord(rec, FieldDailyMaxActiveRegistrations)
	}
	if err != nil {
		d = nil
	}
	return
}

func counterFromRecord(rec wire.Record, field string) (count int64, err error) {
	v, present := rec[field]
	if !present || v.Text == "" {
		return
	}
	count, err = strconv.ParseInt(v.Text, 10, 64)
	switch {
	case err != nil:
		count = 0
		err = fmt.Errorf("%w: bad counter %s: %q", model.ErrInvalidArgument, field, v.Text)
	case count < 0:
		count = 0
		err = fmt.Errorf("%w: negative counter %s", model.ErrOutOfRange, field)
	}
	return
}

func rulesToNodes(rules *RuleSet) (nodes []wire.Node) {
	for _, r := range rules.All() {
		var rightNodes []wire.Node
		for _, name := range r.Rights.Names() {
			rightNodes = append(rightNodes, wire.Node{Name: elemAccessRight, Text: name})
		}
		n := wire.Node{
			Name: elemAuthorizationRule,
			Nodes: []wire.Node{
				{Name: elemKeyName, Text: r.KeyName},
				{Name: elemPrimaryKey, Text: r.PrimaryKey},
			},
		}
		if r.SecondaryKey != "" {
			n.Nodes = append(n.Nodes, wire.Node{Name: elemSecondaryKey, Text: r.SecondaryKey})
		}
		n.Nodes = append(n.Nodes, wire.Node{Name: elemRights, Nodes: rightNodes})
		if !r.Created.IsZero() {
			n.Nodes = append(n.Nodes, wire.Node{Name: elemCreated, Text: r.Created.UTC().Format(time.RFC3339)})
		}
		if !r.Modified.IsZero() {
			n.Nodes = append(n.Nodes, wire.Node{Name: elemModified, Text: r.Modified.UTC().Format(time.RFC3339)})
		}
		nodes = append(nodes, n)
	}
	return
}

func rulesFromNodes(rules *RuleSet, nodes []wire.Node) (err error) {
	for _, n := range nodes {
		r := &AuthorizationRule{
			KeyName:      n.ChildText(elemKeyName),
			PrimaryKey:   n.ChildText(elemPrimaryKey),
			SecondaryKey: n.ChildText(elemSecondaryKey),
		}
		if r.KeyName == "" {
			err = fmt.Errorf("%w: authorization rule carries no key name", model.ErrInvalidArgument)
			break
		}
		if rightsNode, found := n.Child(elemRights); found {
			for _, rn := range rightsNode.Children(elemAccessRight) {
				var right Rights
				right, err = ParseRight(rn.Text)
				if err != nil {
					break
				}
				r.Rights |= right
			}
		}
		if err == nil {
			r.Created, _ = time.Parse(time.RFC3339, n.ChildText(elemCreated))
			r.Modified, _ = time.Parse(time.RFC3339, n.ChildText(elemModified))
			rules.Upsert(r)
		}
		if err != nil {
			break
		}
	}
	return
}

func credentialToNodes(c *Credential) (nodes []wire.Node) {
	for _, p := range c.Properties() {
		nodes = append(nodes, wire.Node{
			Name: elemProperty,
			Nodes: []wire.Node{
				{Name: elemPropertyName, Text: p.Name},
				{Name: elemPropertyValue, Text: p.Value},
			},
		})
	}
	return
}

func credentialFromNodes(nodes []wire.Node) (c *Credential) {
	var props []Property
	for _, n := range nodes {
		if n.Name != elemProperty {
			continue
		}
		props = append(props, Property{
			Name:  n.ChildText(elemPropertyName),
			Value: n.ChildText(elemPropertyValue),
		})
	}
	c = NewCredential(props...)
	return
}

// MarshalWireXML serializes the description into its canonical XML form.
func (d *Description) MarshalWireXML() ([]byte, error) {
	return wire.EncodeXML(descriptionSchema, d.WireRecord())
}

// UnmarshalWireXML parses a hub document received from the service.
func UnmarshalWireXML(data []byte) (d *Description, err error) {
	var rec wire.Record
	rec, err = wire.DecodeXML(descriptionSchema, data)
	if err == nil {
		d, err = DescriptionFromRecord(rec)
	}
	return
}

// MarshalWireJSON serializes the description into the JSON rendition.
func (d *Description) MarshalWireJSON() ([]byte, error) {
	return wire.EncodeJSON(descriptionSchema, d.WireRecord())
}

// UnmarshalWireJSON parses the JSON rendition of a hub document.
func UnmarshalWireJSON(data []byte) (d *Description, err error) {
	var rec wire.Record
	rec, err = wire.DecodeJSON(descriptionSchema, data)
	if err == nil {
		d, err = DescriptionFromRecord(rec)
	}
	return
}
