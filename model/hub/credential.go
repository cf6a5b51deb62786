package hub

// Property names conventionally carried by the platform credentials. The
// remote service interprets them, the SDK passes them through opaquely.
const (
	PropApnsKeyId    = "KeyId"
	PropApnsTeamId   = "TeamId"
	PropApnsBundleId = "BundleId"
	PropApnsToken    = "Token"

	PropWnsPackageSid = "PackageSid"
	PropWnsSecretKey  = "SecretKey"

	PropFcmServiceAccountJson = "ServiceAccountJson"

	PropMpnsCertificate    = "Certificate"
	PropMpnsCertificateKey = "CertificateKey"

	PropAdmClientId     = "ClientId"
	PropAdmClientSecret = "ClientSecret"

	PropBaiduApiKey    = "ApiKey"
	PropBaiduSecretKey = "SecretKey"
)

type Property struct {
	Name  string
	Value string
}

// Credential is an opaque ordered property bag describing the push
// credentials of one platform.
type Credential struct {
	props []Property
}

func NewCredential(props ...Property) (c *Credential) {
	c = &Credential{}
	c.props = append(c.props, props...)
	return
}

func (c *Credential) Properties() (props []Property) {
	props = make([]Property, len(c.props))
	copy(props, c.props)
	return
}

func (c *Credential) Property(name string) (value string, found bool) {
	for _, p := range c.props {
		if p.Name == name {
			value, found = p.Value, true
			break
		}
	}
	return
}

func (c *Credential) Clone() (clone *Credential) {
	if c != nil {
		clone = NewCredential(c.props...)
	}
	return
}

func NewApnsCredential(keyId, teamId, bundleId, token string) *Credential {
	return NewCredential(
		Property{Name: PropApnsKeyId, Value: keyId},
		Property{Name: PropApnsTeamId, Value: teamId},
		Property{Name: PropApnsBundleId, Value: bundleId},
		Property{Name: PropApnsToken, Value: token},
	)
}

func NewWnsCredential(packageSid, secretKey string) *Credential {
	return NewCredential(
		Property{Name: PropWnsPackageSid, Value: packageSid},
		Property{Name: PropWnsSecretKey, Value: secretKey},
	)
}

func NewFcmCredential(serviceAccountJson string) *Credential {
	return NewCredential(
		Property{Name: PropFcmServiceAccountJson, Value: serviceAccountJson},
	)
}

func NewMpnsCredential(certificate, certificateKey string) *Credential {
	return NewCredential(
		Property{Name: PropMpnsCertificate, Value: certificate},
		Property{Name: PropMpnsCertificateKey, Value: certificateKey},
	)
}

func NewAdmCredential(clientId, clientSecret string) *Credential {
	return NewCredential(
		Property{Name: PropAdmClientId, Value: clientId},
		Property{Name: PropAdmClientSecret, Value: clientSecret},
	)
}

func NewBaiduCredential(apiKey, secretKey string) *Credential {
	return NewCredential(
		Property{Name: PropBaiduApiKey, Value: apiKey},
		Property{Name: PropBaiduSecretKey, Value: secretKey},
	)
}
