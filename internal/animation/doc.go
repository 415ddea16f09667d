// Package animation defines the playback contract the canvas drives and a
// tween-based Player implementing it.
//
// The canvas only decides whether to play an animation and with which
// options. Frame computation belongs to the Animator: Player advances
// gween tweens on each Update(dt) tick, one track per element handle.
//
// Animation clips are the resolved form of animation assets. A ClipSource
// looks them up by id; FromAssets adapts an assets.Store.
package animation
