package manifest

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Severity classifies a validation issue.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Issue is a single validation finding attributed to a record and field.
type Issue struct {
	Service  string
	Field    string
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	subject := i.Service
	if subject == "" {
		subject = "manifest"
	}
	if i.Field != "" {
		subject += "." + i.Field
	}
	return fmt.Sprintf("%s: %s: %s", i.Severity, subject, i.Message)
}

// Result is the full set of issues found in a manifest.
type Result []Issue

// HasErrors reports whether any issue is an error rather than a warning.
func (r Result) HasErrors() bool {
	for _, issue := range r {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the error-severity issues.
func (r Result) Errors() Result {
	var out Result
	for _, issue := range r {
		if issue.Severity == SeverityError {
			out = append(out, issue)
		}
	}
	return out
}

// Validate checks every declaration in the blueprint and the cross-record
// references between them. It always returns the complete issue list rather
// than stopping at the first failure.
func Validate(bp *Blueprint) Result {
	var result Result

	for _, svc := range bp.Services {
		result = append(result, validateDeclaration(svc)...)
	}

	result = append(result, validateUniqueNames(bp)...)
	result = append(result, validateReferences(bp)...)

	return result
}

func validateDeclaration(svc ServiceDeclaration) Result {
	hasImage := svc.Image != nil && svc.Image.URL != ""

	err := validation.ValidateStruct(&svc,
		validation.Field(&svc.Name, validation.Required),
		validation.Field(&svc.Type,
			validation.Required,
			validation.In(toAnySlice(ServiceTypes)...),
		),
		validation.Field(&svc.Env,
			validation.In(toAnySlice(Runtimes)...),
		),
		validation.Field(&svc.Repo, validation.By(validateRepoURL)),
		validation.Field(&svc.StartCommand,
			validation.Required.When(svc.Type != TypeStatic && !hasImage).
				Error("required for non-static services without a prebuilt image"),
		),
		validation.Field(&svc.StaticPublishPath,
			validation.Required.When(svc.Type == TypeStatic).
				Error("required for static services"),
			validation.Empty.When(svc.Type != TypeStatic && svc.Type != "").
				Error("only valid for static services"),
			validation.By(validateSafePath),
		),
		validation.Field(&svc.Schedule,
			validation.Required.When(svc.Type == TypeCron).
				Error("required for cron services"),
			validation.Empty.When(svc.Type != TypeCron && svc.Type != "").
				Error("only valid for cron services"),
		),
		validation.Field(&svc.HealthCheckPath, validation.By(validateSafePath)),
		validation.Field(&svc.NumInstances, validation.Min(0)),
	)

	result := flattenValidation(svc.Name, err)
	result = append(result, validateEnvVarDefs(svc.Name, "envVars", svc.EnvVars)...)

	if svc.AutoDeployEnabled() && svc.Branch == "" && svc.Repo != "" {
		result = append(result, Issue{
			Service:  svc.Name,
			Field:    "branch",
			Severity: SeverityWarning,
			Message:  "autoDeploy is enabled but no branch is pinned",
		})
	}

	return result
}

func validateEnvVarDefs(owner, field string, defs []EnvVarDef) Result {
	var result Result

	for i, def := range defs {
		at := fmt.Sprintf("%s[%d]", field, i)

		refs := 0
		if def.FromGroup != "" {
			refs++
		}
		if def.FromService != nil {
			refs++
		}
		if def.FromDatabase != nil {
			refs++
		}

		switch {
		case refs > 1:
			result = append(result, Issue{
				Service:  owner,
				Field:    at,
				Severity: SeverityError,
				Message:  "at most one of fromGroup, fromService, fromDatabase is allowed",
			})
		case def.FromGroup != "" && def.Key != "":
			// A group reference imports the group's whole key set.
			result = append(result, Issue{
				Service:  owner,
				Field:    at,
				Severity: SeverityError,
				Message:  "key is not allowed on a fromGroup entry",
			})
		case def.FromDatabase != nil && def.Key == "":
			result = append(result, Issue{
				Service:  owner,
				Field:    at,
				Severity: SeverityError,
				Message:  "fromDatabase entries need a key to bind the value to",
			})
		case refs == 0 && def.Key == "":
			result = append(result, Issue{
				Service:  owner,
				Field:    at,
				Severity: SeverityError,
				Message:  "entry needs a key or a reference",
			})
		case refs == 0 && def.Value == "" && !def.GenerateValue && def.Sync == nil:
			result = append(result, Issue{
				Service:  owner,
				Field:    at,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("%s has no value; set value, generateValue, or sync", def.Key),
			})
		}

		if def.FromService != nil && def.FromService.Name == "" {
			result = append(result, Issue{
				Service:  owner,
				Field:    at,
				Severity: SeverityError,
				Message:  "fromService requires a service name",
			})
		}
		if def.FromDatabase != nil && def.FromDatabase.Name == "" {
			result = append(result, Issue{
				Service:  owner,
				Field:    at,
				Severity: SeverityError,
				Message:  "fromDatabase requires a database name",
			})
		}
	}

	return result
}

func validateUniqueNames(bp *Blueprint) Result {
	var result Result
	seen := make(map[string]string)

	record := func(name, kind string) {
		if name == "" {
			return
		}
		if prev, ok := seen[name]; ok {
			result = append(result, Issue{
				Service:  name,
				Field:    "name",
				Severity: SeverityError,
				Message:  fmt.Sprintf("duplicate name: already used by %s %q", prev, name),
			})
			return
		}
		seen[name] = kind
	}

	for _, svc := range bp.Services {
		record(svc.Name, "service")
	}
	for _, db := range bp.Databases {
		record(db.Name, "database")
	}
	for _, group := range bp.EnvVarGroups {
		record(group.Name, "envVarGroup")
	}

	return result
}

func validateReferences(bp *Blueprint) Result {
	var result Result

	check := func(owner string, defs []EnvVarDef) {
		for i, def := range defs {
			at := fmt.Sprintf("envVars[%d]", i)

			if def.FromGroup != "" {
				if _, ok := bp.Group(def.FromGroup); !ok {
					result = append(result, Issue{
						Service:  owner,
						Field:    at,
						Severity: SeverityError,
						Message:  fmt.Sprintf("fromGroup references undeclared group %q", def.FromGroup),
					})
				}
			}
			if def.FromService != nil && def.FromService.Name != "" {
				if _, ok := bp.Service(def.FromService.Name); !ok {
					result = append(result, Issue{
						Service:  owner,
						Field:    at,
						Severity: SeverityError,
						Message:  fmt.Sprintf("fromService references undeclared service %q", def.FromService.Name),
					})
				}
			}
			if def.FromDatabase != nil && def.FromDatabase.Name != "" {
				if !bp.HasDatabase(def.FromDatabase.Name) {
					result = append(result, Issue{
						Service:  owner,
						Field:    at,
						Severity: SeverityError,
						Message:  fmt.Sprintf("fromDatabase references undeclared database %q", def.FromDatabase.Name),
					})
				}
			}
		}
	}

	for _, svc := range bp.Services {
		check(svc.Name, svc.EnvVars)
	}

	return result
}

// flattenValidation converts ozzo's field-keyed error map into issues.
func flattenValidation(owner string, err error) Result {
	if err == nil {
		return nil
	}

	errs, ok := err.(validation.Errors)
	if !ok {
		return Result{{Service: owner, Severity: SeverityError, Message: err.Error()}}
	}

	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	result := make(Result, 0, len(fields))
	for _, field := range fields {
		result = append(result, Issue{
			Service:  owner,
			Field:    field,
			Severity: SeverityError,
			Message:  errs[field].Error(),
		})
	}
	return result
}

func validateRepoURL(value interface{}) error {
	repo, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if repo == "" {
		return nil
	}

	parsed, err := url.Parse(repo)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "must use http or https scheme")
	}
	if parsed.Host == "" {
		return validation.NewError("validation_missing_host", "must have a host")
	}

	return nil
}

// validateSafePath rejects path values that carry a scheme or escape the
// service root.
func validateSafePath(value interface{}) error {
	p, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if p == "" {
		return nil
	}

	if strings.Contains(p, "://") {
		return validation.NewError("validation_invalid_path", "must be a path, not a URL")
	}
	for _, segment := range strings.Split(strings.TrimPrefix(p, "./"), "/") {
		if segment == ".." {
			return validation.NewError("validation_invalid_path", "must not escape the service root")
		}
	}

	return nil
}

func toAnySlice(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
