package config

import (
	"fmt"
	"regexp"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/validation"
)

// Severity levels of a ValidationError.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// clusterNamePattern is the name format kind accepts.
var clusterNamePattern = regexp.MustCompile(`^[a-z0-9.-]+$`)

var validAccessModes = map[string]bool{
	string(corev1.ReadWriteOnce):    true,
	string(corev1.ReadOnlyMany):     true,
	string(corev1.ReadWriteMany):    true,
	string(corev1.ReadWriteOncePod): true,
}

// ValidationError represents a configuration validation error or warning.
type ValidationError struct {
	Field    string // Configuration field that failed validation
	Message  string // Human-readable error message
	Severity string // "error" or "warning"
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ve.Severity, ve.Field, ve.Message)
}

// IsError returns true if this is an error (not a warning).
func (ve ValidationError) IsError() bool {
	return ve.Severity == SeverityError
}

// ValidationErrors is the error returned by Validate.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n  ")
}

// Validate returns a ValidationErrors listing every error found, or nil.
// Warnings are not reported here, use Check for the full list.
func (c *Config) Validate() error {
	var errs ValidationErrors
	for _, ve := range c.Check() {
		if ve.IsError() {
			errs = append(errs, ve)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Check runs all validation checks and returns any errors or warnings.
func (c *Config) Check() []ValidationError {
	var out []ValidationError
	add := func(field, severity, format string, args ...any) {
		out = append(out, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Severity: severity})
	}

	switch {
	case c.ClusterName == "":
		add("clusterName", SeverityError, "is required")
	case !clusterNamePattern.MatchString(c.ClusterName):
		add("clusterName", SeverityError, "%q must consist of lower case letters, digits, '.' and '-'", c.ClusterName)
	}

	if err := ValidateSubnet(c.Network.Subnet); err != nil {
		add("network.subnet", SeverityError, "%v", err)
	}

	out = append(out, c.checkStorage()...)

	if len(c.Bootstrap) == 0 {
		add("bootstrap", SeverityWarning, "no bootstrap actions configured")
	}
	for i, g := range c.Bootstrap {
		field := fmt.Sprintf("bootstrap[%d]", i)
		if g.Type == "" {
			add(field+".type", SeverityError, "is required")
		}
		if len(g.Steps) == 0 {
			add(field+".scripts", SeverityWarning, "group %q has no scripts", g.Type)
		}
		for j, s := range g.Steps {
			if strings.TrimSpace(s.Run) == "" {
				add(fmt.Sprintf("%s.scripts[%d]", field, j), SeverityError, "command is empty")
			}
		}
	}

	return out
}

func (c *Config) checkStorage() []ValidationError {
	s := c.Storage
	if s.Disabled {
		return nil
	}

	var out []ValidationError
	add := func(field, format string, args ...any) {
		out = append(out, ValidationError{Field: "storage." + field, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
	}

	names := []struct{ field, value string }{
		{"volumeName", s.VolumeName},
		{"claimName", s.ClaimName},
		{"namespace", s.Namespace},
	}
	for _, n := range names {
		if msgs := validation.IsDNS1123Subdomain(n.value); len(msgs) > 0 {
			add(n.field, "%q: %s", n.value, strings.Join(msgs, "; "))
		}
	}

	if _, err := resource.ParseQuantity(s.Capacity); err != nil {
		add("capacity", "%q is not a quantity: %v", s.Capacity, err)
	}
	if !validAccessModes[s.AccessMode] {
		add("accessMode", "unsupported access mode %q", s.AccessMode)
	}
	if !strings.HasPrefix(s.HostPath, "/") {
		add("hostPath", "%q must be an absolute path", s.HostPath)
	}

	return out
}
