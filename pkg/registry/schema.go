// pkg/registry/schema.go
package registry

// ActivityRegistry is the catalog of job types this module serves, exported
// for process designers.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	TaskType    string   `json:"taskType"`
	Inputs      []string `json:"inputs"`
	Outputs     []string `json:"outputs"`
	// ErrorCodes are internal codes; BPMNErrors lists what the engine sees.
	ErrorCodes []string `json:"errorCodes"`
	BPMNErrors []string `json:"bpmnErrors,omitempty"`
	Timeout    string   `json:"timeout"`
	Retries    int      `json:"retries"`
	Tags       []string `json:"tags,omitempty"`
}

const (
	CategorySearch  = "search"
	CategoryLoyalty = "loyalty"
)
