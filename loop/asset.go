package loop

import (
	"fmt"
	"path/filepath"

	"glitch-scene/animation"
	"glitch-scene/scene"
)

// Asset is the result of a model load.
type Asset struct {
	Name string

	// Root is the first top-level node of the model, the one added to the
	// scene. The remaining roots stay under the mixer's holder node.
	Root *scene.Node

	// Animator plays the first clip; nil when the model has no clips.
	Animator Animator
	Mixer    *animation.Mixer
	Clips    []*animation.Clip

	// ClipErr is set when the model loaded but its animations could not
	// be read; the model is still usable, just static.
	ClipErr error

	Err error
}

// LoadModel reads a glTF/GLB file on its own goroutine. Exactly one Asset is
// sent on the returned channel, which is buffered so the loader never waits
// for the loop. GPU upload happens later, at first draw.
func LoadModel(path string) <-chan Asset {
	out := make(chan Asset, 1)
	go func() {
		out <- loadModel(path)
	}()
	return out
}

func loadModel(path string) Asset {
	result, err := scene.LoadGLTF(path)
	if err != nil {
		return Asset{Name: path, Err: err}
	}
	return BuildAsset(filepath.Base(path), result)
}

// BuildAsset wraps a loaded glTF: every root goes under one holder node
// that the mixer animates, clip 0 is played on repeat and root 0 is the
// node handed to the scene. Unreadable animations leave the asset without
// an animator.
func BuildAsset(name string, result *scene.GLTFResult) Asset {
	holder := scene.NewNode(name)
	for _, root := range result.Roots {
		holder.AddChild(root)
	}

	asset := Asset{Name: name}
	if len(result.Roots) > 0 {
		asset.Root = result.Roots[0]
	}

	if result.Document == nil {
		return asset
	}
	clips, err := animation.ExtractClips(result.Document, result.Nodes)
	if err != nil {
		asset.ClipErr = fmt.Errorf("animations of %q: %w", name, err)
		return asset
	}
	asset.Clips = clips
	if len(clips) > 0 {
		mixer := animation.NewMixer(holder)
		mixer.ClipAction(clips[0]).Play()
		asset.Mixer = mixer
		asset.Animator = mixer
	}
	return asset
}
