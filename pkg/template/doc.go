// Package template provides versioned notification templates and the
// renderer that turns a template plus variables into channel-ready
// content.
//
// Rendering performs literal {{name}} substring substitution in title,
// message, and action URL templates. The substitution policy is
// deliberately lenient: a placeholder with no supplied value and no
// declared default passes through verbatim instead of failing, and
// ValidateVariables exists as a separate advisory check for required
// variables. For webhook payloads, substitution recurses structurally
// through the declared payload shape and touches only string leaves.
//
// Templates are versioned: creating a template under an existing name
// starts a new version linked to the previous record, and superseded
// versions remain queryable by explicit version number. Catalogs of
// seed templates can be loaded from YAML files via LoadCatalog.
package template
