package domain

// Host is a machine bound to one primary IP and any number of roles.
// ReloIP holds secondary addresses the host can be relocated to.
type Host struct {
	HostName string   `json:"host_name"`
	IP       string   `json:"ip"`
	Role     []string `json:"role"`
	ReloIP   []string `json:"relo_ip,omitempty"`
}
