// Package model defines the typed intake model shared by the flow engine,
// persistence layer and renderers. A Registry is an ordered, validated list
// of StepDescriptor values; each descriptor declares a closed StepKind, an
// optional Mask applied to keystrokes, select options, and optional branching
// metadata (FollowUp for conditional sub-questions, ShowWhen for skip
// patterns). FormState holds the display form of every answer keyed by the
// descriptor key, or by the derived sub-keys of an address group
// (`{prefix}Street`, `{prefix}Unit`, `{prefix}City`, `{prefix}State`,
// `{prefix}Zip`).
package model
