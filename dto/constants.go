package dto

type NetClientType string

// NET_DEFAULT_CLIENT_REF is the registry key of the storefront API client
// created during Hydrate.
const NET_DEFAULT_CLIENT_REF = "net.client.default"

// NetClient carries the identifying metadata every registered client exposes.
type NetClient struct {
	Name        string        `json:"name" yaml:"name"`
	Ref         string        `json:"ref" yaml:"ref"`
	ClientType  NetClientType `json:"client_type" yaml:"client_type"`
	Description string        `json:"description" yaml:"description"`
}

type CallStatus string

const (
	PENDING     CallStatus = "pending"
	IN_PROGRESS CallStatus = "in_progress"
	COMPLETE    CallStatus = "complete"
	ERROR       CallStatus = "error"
	// STOPPED marks a call aborted by its caller. Never an error.
	STOPPED CallStatus = "stopped"
)

// IsTerminal reports whether a call status can no longer change.
func (s CallStatus) IsTerminal() bool {
	return s == COMPLETE || s == ERROR || s == STOPPED
}
