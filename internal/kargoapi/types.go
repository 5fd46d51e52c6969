// Package kargoapi mirrors the subset of the kargo.akuity.io/v1alpha1 schema
// that the generator emits. The progressive-delivery controller owns these
// types; field names and nesting are a fixed wire contract and must not
// drift.
package kargoapi

import metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

const (
	// APIVersion is the API version of all emitted Kargo resources.
	APIVersion = "kargo.akuity.io/v1alpha1"

	// ProjectLabelKey is the namespace label that lets Kargo adopt an
	// existing namespace as a Project namespace.
	ProjectLabelKey = "kargo.akuity.io/project"
)

// Project reconciles to a specially labeled namespace holding all of an
// application's pipeline resources.
type Project struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`
}

// ProjectConfig describes the configuration of a Project.
type ProjectConfig struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`
	Spec              ProjectConfigSpec `json:"spec,omitempty"`
}

// ProjectConfigSpec describes the configuration of a Project.
type ProjectConfigSpec struct {
	// PromotionPolicies defines policies governing the promotion of Freight
	// to specific Stages within the Project.
	PromotionPolicies []PromotionPolicy `json:"promotionPolicies,omitempty"`
}

// PromotionPolicy defines policies governing the promotion of Freight to a
// specific Stage.
type PromotionPolicy struct {
	// StageSelector is a selector that matches the Stage resource to which
	// this policy applies.
	StageSelector *PromotionPolicySelector `json:"stageSelector,omitempty"`
	// AutoPromotionEnabled indicates whether new Freight can automatically be
	// promoted into the selected Stage.
	AutoPromotionEnabled bool `json:"autoPromotionEnabled,omitempty"`
}

// PromotionPolicySelector selects a Stage resource by name.
type PromotionPolicySelector struct {
	Name string `json:"name,omitempty"`
}

// Warehouse is a source of Freight.
type Warehouse struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`
	Spec              WarehouseSpec `json:"spec"`
}

// WarehouseSpec describes sources of versioned artifacts to be included in
// Freight produced by this Warehouse.
type WarehouseSpec struct {
	// Subscriptions describes sources of artifacts to be included in Freight
	// produced by this Warehouse.
	Subscriptions []RepoSubscription `json:"subscriptions"`
}

// RepoSubscription describes a subscription to an artifact repository. Only
// Git subscriptions are emitted here.
type RepoSubscription struct {
	Git *GitSubscription `json:"git,omitempty"`
}

// GitSubscription defines a subscription to a Git repository.
type GitSubscription struct {
	// RepoURL is the repository's URL.
	RepoURL string `json:"repoURL"`
	// Branch references a particular branch of the repository.
	Branch string `json:"branch,omitempty"`
	// IncludePaths limits the paths whose changes produce new Freight.
	IncludePaths []string `json:"includePaths,omitempty"`
}

// Stage is one promotion step of an application's pipeline.
type Stage struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`
	Spec              StageSpec `json:"spec"`
}

// StageSpec describes the sources of Freight used by a Stage and how to
// incorporate Freight into the Stage.
type StageSpec struct {
	// Shard is the name of the shard that this Stage belongs to. When empty,
	// the Stage belongs to the default shard.
	Shard string `json:"shard,omitempty"`
	// RequestedFreight describes the Freight the Stage seeks and where it may
	// be sourced from.
	RequestedFreight []FreightRequest `json:"requestedFreight"`
	// PromotionTemplate describes how to incorporate Freight into the Stage.
	PromotionTemplate *PromotionTemplate `json:"promotionTemplate,omitempty"`
}

// FreightRequest expresses a Stage's interest in Freight from a particular
// origin.
type FreightRequest struct {
	Origin  FreightOrigin  `json:"origin"`
	Sources FreightSources `json:"sources"`
}

// FreightOriginKind identifies the kind of resource Freight originates from.
type FreightOriginKind string

// FreightOriginKindWarehouse is the only origin kind the generator emits.
const FreightOriginKindWarehouse FreightOriginKind = "Warehouse"

// FreightOrigin identifies the resource Freight originates from.
type FreightOrigin struct {
	Kind FreightOriginKind `json:"kind"`
	Name string            `json:"name"`
}

// FreightSources describes where a Stage may source requested Freight from:
// directly from its origin, or from one or more upstream Stages.
type FreightSources struct {
	// Direct indicates the Stage may source Freight directly from its origin.
	Direct bool `json:"direct,omitempty"`
	// Stages names upstream Stages the Freight must have been verified in.
	Stages []string `json:"stages,omitempty"`
	// AutoPromotionOptions tunes auto-promotion behavior for Freight sourced
	// from upstream Stages.
	AutoPromotionOptions *AutoPromotionOptions `json:"autoPromotionOptions,omitempty"`
}

// FreightSelectionPolicy identifies a strategy for selecting Freight to
// auto-promote.
type FreightSelectionPolicy string

// FreightSelectionPolicyMatchUpstream promotes exactly the Freight currently
// in the upstream Stage.
const FreightSelectionPolicyMatchUpstream FreightSelectionPolicy = "MatchUpstream"

// AutoPromotionOptions tunes auto-promotion behavior.
type AutoPromotionOptions struct {
	SelectionPolicy FreightSelectionPolicy `json:"selectionPolicy,omitempty"`
}

// PromotionTemplate defines a template for Promotions that incorporate
// Freight into a Stage.
type PromotionTemplate struct {
	Spec PromotionTemplateSpec `json:"spec"`
}

// PromotionTemplateSpec describes the (partial) specification of a
// Promotion.
type PromotionTemplateSpec struct {
	// Steps specifies the directives to be executed as part of a Promotion,
	// in order.
	Steps []PromotionStep `json:"steps,omitempty"`
}

// PromotionStep describes one directive to execute as part of a Promotion.
type PromotionStep struct {
	// Uses names the directive to execute.
	Uses string `json:"uses,omitempty"`
	// Config is the directive's opaque configuration.
	Config map[string]any `json:"config,omitempty"`
}
