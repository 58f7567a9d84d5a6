package schema

// Project is the normalized deployment model produced from one or more
// manifest sources.
type Project struct {
	Name     string    `json:"name"`
	Services []Service `json:"services"`
}

// Service represents a single deployable workload after normalization.
type Service struct {
	Name    string  `json:"name"`
	Network Network `json:"network"`
	Runtime Runtime `json:"runtime"`
	Build   Build   `json:"build"`

	// Image is set for prebuilt-image services.
	Image string `json:"image,omitempty"`

	// BuildPath is the directory the service builds from.
	BuildPath string `json:"buildPath,omitempty"`

	BuildCommand string `json:"buildCommand,omitempty"`
	StartCommand string `json:"startCommand,omitempty"`
	PublishPath  string `json:"publishPath,omitempty"`
	Schedule     string `json:"schedule,omitempty"`

	Repo       string `json:"repo,omitempty"`
	Branch     string `json:"branch,omitempty"`
	Region     string `json:"region,omitempty"`
	Plan       string `json:"plan,omitempty"`
	AutoDeploy bool   `json:"autoDeploy"`

	HealthCheckPath string   `json:"healthCheckPath,omitempty"`
	Domains         []string `json:"domains,omitempty"`

	Environment map[string]EnvVar `json:"environment,omitempty"`
	Configs     []ConfigRef       `json:"configs,omitempty"`
}

// EnvVar is an environment variable with provenance metadata.
type EnvVar struct {
	Value     string `json:"value"`
	Generated bool   `json:"generated,omitempty"`
	Sensitive bool   `json:"sensitive,omitempty"`
}

// ConfigRef records which manifest file contributed a service.
type ConfigRef struct {
	Type string `json:"type"` // "blueprint", "blueprint-toml", "docker-compose"
	Path string `json:"path"`
}

type Network int

const (
	NetworkNone    Network = iota // no network access needed
	NetworkPrivate                // service-to-service only
	NetworkPublic                 // internet-facing
)

func (n Network) String() string {
	switch n {
	case NetworkNone:
		return "none"
	case NetworkPrivate:
		return "private"
	case NetworkPublic:
		return "public"
	default:
		return "unknown"
	}
}

type Runtime int

const (
	RuntimeContinuous Runtime = iota // long-running process
	RuntimeScheduled                 // cron/batch job
	RuntimeStatic                    // built assets served by the platform
)

func (r Runtime) String() string {
	switch r {
	case RuntimeContinuous:
		return "continuous"
	case RuntimeScheduled:
		return "scheduled"
	case RuntimeStatic:
		return "static"
	default:
		return "unknown"
	}
}

type Build int

const (
	BuildFromSource Build = iota // build from source tree
	BuildFromImage               // use pre-built image
)

func (b Build) String() string {
	switch b {
	case BuildFromSource:
		return "source"
	case BuildFromImage:
		return "image"
	default:
		return "unknown"
	}
}

func NewProject(name string) *Project {
	return &Project{
		Name:     name,
		Services: make([]Service, 0),
	}
}

func (p *Project) AddService(service Service) {
	p.Services = append(p.Services, service)
}

// Lookup returns the service with the given name, if any.
func (p *Project) Lookup(name string) (Service, bool) {
	for _, svc := range p.Services {
		if svc.Name == name {
			return svc, true
		}
	}
	return Service{}, false
}

func NewService(name string) Service {
	return Service{
		Name:        name,
		Environment: make(map[string]EnvVar),
	}
}
