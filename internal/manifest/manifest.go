// Package manifest implements the blueprint manifest format: the declarative
// file describing deployable services for a platform target. It covers
// parsing (YAML and TOML), structural validation, and normalization into the
// platform-neutral schema.
package manifest

// Service type constants.
const (
	TypeWeb        = "web"
	TypeStatic     = "static"
	TypeBackground = "background"
	TypeCron       = "cron"
	TypePrivate    = "pserv"
)

// ServiceTypes lists all valid values for a declaration's type field.
var ServiceTypes = []string{TypeWeb, TypeStatic, TypeBackground, TypeCron, TypePrivate}

// Runtimes lists all valid values for a declaration's env field.
var Runtimes = []string{"docker", "elixir", "go", "node", "python", "ruby", "rust", "static"}

// Blueprint is the root of a manifest document.
type Blueprint struct {
	Services     []ServiceDeclaration `yaml:"services" toml:"services" json:"services"`
	Databases    []Database           `yaml:"databases,omitempty" toml:"databases,omitempty" json:"databases,omitempty"`
	EnvVarGroups []EnvVarGroup        `yaml:"envVarGroups,omitempty" toml:"envVarGroups,omitempty" json:"envVarGroups,omitempty"`
	Previews     *Previews            `yaml:"previews,omitempty" toml:"previews,omitempty" json:"previews,omitempty"`
}

// ServiceDeclaration is one deployable unit's configuration record.
type ServiceDeclaration struct {
	Type string `yaml:"type" toml:"type" json:"type"`
	Name string `yaml:"name" toml:"name" json:"name"`

	// Env is the runtime environment tag (python, node, static, ...).
	Env string `yaml:"env,omitempty" toml:"env,omitempty" json:"env,omitempty"`

	Region string `yaml:"region,omitempty" toml:"region,omitempty" json:"region,omitempty"`
	Plan   string `yaml:"plan,omitempty" toml:"plan,omitempty" json:"plan,omitempty"`

	BuildCommand string `yaml:"buildCommand,omitempty" toml:"buildCommand,omitempty" json:"buildCommand,omitempty"`
	StartCommand string `yaml:"startCommand,omitempty" toml:"startCommand,omitempty" json:"startCommand,omitempty"`

	// StaticPublishPath is the directory of built assets for static services.
	StaticPublishPath string `yaml:"staticPublishPath,omitempty" toml:"staticPublishPath,omitempty" json:"staticPublishPath,omitempty"`

	// Schedule is the cron expression for cron services.
	Schedule string `yaml:"schedule,omitempty" toml:"schedule,omitempty" json:"schedule,omitempty"`

	EnvVars []EnvVarDef `yaml:"envVars,omitempty" toml:"envVars,omitempty" json:"envVars,omitempty"`

	AutoDeploy *bool  `yaml:"autoDeploy,omitempty" toml:"autoDeploy,omitempty" json:"autoDeploy,omitempty"`
	Branch     string `yaml:"branch,omitempty" toml:"branch,omitempty" json:"branch,omitempty"`
	Repo       string `yaml:"repo,omitempty" toml:"repo,omitempty" json:"repo,omitempty"`

	HealthCheckPath string   `yaml:"healthCheckPath,omitempty" toml:"healthCheckPath,omitempty" json:"healthCheckPath,omitempty"`
	Domains         []string `yaml:"domains,omitempty" toml:"domains,omitempty" json:"domains,omitempty"`
	NumInstances    int      `yaml:"numInstances,omitempty" toml:"numInstances,omitempty" json:"numInstances,omitempty"`

	Image *Image `yaml:"image,omitempty" toml:"image,omitempty" json:"image,omitempty"`
}

// AutoDeployEnabled reports whether the service deploys on push.
// The platform default is on, so an absent field counts as true.
func (s ServiceDeclaration) AutoDeployEnabled() bool {
	return s.AutoDeploy == nil || *s.AutoDeploy
}

// Image declares a prebuilt container image source.
type Image struct {
	URL   string      `yaml:"url" toml:"url" json:"url"`
	Creds *ImageCreds `yaml:"creds,omitempty" toml:"creds,omitempty" json:"creds,omitempty"`
}

type ImageCreds struct {
	FromRegistryCreds *RegistryCred `yaml:"fromRegistryCreds,omitempty" toml:"fromRegistryCreds,omitempty" json:"fromRegistryCreds,omitempty"`
}

type RegistryCred struct {
	Name string `yaml:"name" toml:"name" json:"name"`
}

// EnvVarDef is a single entry in a service's envVars list. Exactly one of
// the value form (Key + Value/GenerateValue/Sync) or a reference form
// (FromGroup, FromService, FromDatabase) is allowed.
type EnvVarDef struct {
	Key           string `yaml:"key,omitempty" toml:"key,omitempty" json:"key,omitempty"`
	Value         string `yaml:"value,omitempty" toml:"value,omitempty" json:"value,omitempty"`
	GenerateValue bool   `yaml:"generateValue,omitempty" toml:"generateValue,omitempty" json:"generateValue,omitempty"`
	Sync          *bool  `yaml:"sync,omitempty" toml:"sync,omitempty" json:"sync,omitempty"`

	FromGroup    string          `yaml:"fromGroup,omitempty" toml:"fromGroup,omitempty" json:"fromGroup,omitempty"`
	FromService  *EnvFromService `yaml:"fromService,omitempty" toml:"fromService,omitempty" json:"fromService,omitempty"`
	FromDatabase *EnvFromDB      `yaml:"fromDatabase,omitempty" toml:"fromDatabase,omitempty" json:"fromDatabase,omitempty"`
}

// IsReference reports whether the entry uses one of the reference forms.
func (e EnvVarDef) IsReference() bool {
	return e.FromGroup != "" || e.FromService != nil || e.FromDatabase != nil
}

type EnvFromService struct {
	Name      string `yaml:"name" toml:"name" json:"name"`
	Type      string `yaml:"type,omitempty" toml:"type,omitempty" json:"type,omitempty"`
	Property  string `yaml:"property,omitempty" toml:"property,omitempty" json:"property,omitempty"`
	EnvVarKey string `yaml:"envVarKey,omitempty" toml:"envVarKey,omitempty" json:"envVarKey,omitempty"`
}

type EnvFromDB struct {
	Name     string `yaml:"name" toml:"name" json:"name"`
	Property string `yaml:"property,omitempty" toml:"property,omitempty" json:"property,omitempty"`
}

// Database declares a managed database instance.
type Database struct {
	Name         string `yaml:"name" toml:"name" json:"name"`
	Plan         string `yaml:"plan,omitempty" toml:"plan,omitempty" json:"plan,omitempty"`
	DatabaseName string `yaml:"databaseName,omitempty" toml:"databaseName,omitempty" json:"databaseName,omitempty"`
	User         string `yaml:"user,omitempty" toml:"user,omitempty" json:"user,omitempty"`
}

// EnvVarGroup is a named set of env vars shared across services.
type EnvVarGroup struct {
	Name    string      `yaml:"name" toml:"name" json:"name"`
	EnvVars []EnvVarDef `yaml:"envVars" toml:"envVars" json:"envVars"`
}

type Previews struct {
	Generation string `yaml:"generation,omitempty" toml:"generation,omitempty" json:"generation,omitempty"`
}

// Service returns the declaration with the given name, if any.
func (b *Blueprint) Service(name string) (ServiceDeclaration, bool) {
	for _, svc := range b.Services {
		if svc.Name == name {
			return svc, true
		}
	}
	return ServiceDeclaration{}, false
}

// Group returns the env var group with the given name, if any.
func (b *Blueprint) Group(name string) (EnvVarGroup, bool) {
	for _, g := range b.EnvVarGroups {
		if g.Name == name {
			return g, true
		}
	}
	return EnvVarGroup{}, false
}

// HasDatabase reports whether a database with the given name is declared.
func (b *Blueprint) HasDatabase(name string) bool {
	for _, db := range b.Databases {
		if db.Name == name {
			return true
		}
	}
	return false
}
