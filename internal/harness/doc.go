// Package harness runs scene scenarios against a live canvas.
//
// A scenario loads a manifest, drives the router and prefab engine through
// a list of steps, and checks the resulting trace, render tree and
// navigation journal.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	manifest: ../manifests/site.yaml
//	start: /
//	steps:
//	  - navigate: /posts/hello?ref=home
//	    expect:
//	      scene: post
//	      params: { slug: hello }
//	  - back: true
//	  - instantiate: card
//	    id: extra
//	    parent: home
//	    parameters: { title: Extra }
//	assertions:
//	  - type: scene_order
//	    scenes: [home, post, home]
//	  - type: node
//	    id: extra/title
//	    content: Extra
//	  - type: style
//	    node: featured
//	    property: padding
//	    value: 8px
//
// # Assertion Types
//
//   - trace_contains: a step of the given kind ran with the given input
//   - trace_count: a step kind ran exactly N times
//   - scene_order: scenes were visited in this order (gaps allowed)
//   - final_state: path, route, scene, params and query after the last step
//   - node: a node exists in the final render, optionally with content/kind
//   - style: a composed style property of a rendered node
//   - placeholder: a prefab reference rendered as a placeholder
//   - journal_count: the navigation journal holds exactly N rows
//   - replay_clean: replaying the journal reproduces every state
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory store, a logical clock starting at 0 and
// sequential instance ids, so the same scenario always yields the same
// trace. RunWithGolden compares that trace against testdata/golden.
package harness
