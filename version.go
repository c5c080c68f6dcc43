package emberforge

// DefaultProtocolVersion and DefaultVersionName pin the protocol identity
// advertised in the status response. The handshake's protocol version is
// not checked: clients of any version proceed to status or login.
const (
	DefaultProtocolVersion int32 = 772
	DefaultVersionName           = "1.21.8"
)

// version is the identity a SharedServer advertises, defaulting to
// DefaultProtocolVersion/DefaultVersionName but overridable at setup time.
type version struct {
	Name     string
	Protocol int32
}
