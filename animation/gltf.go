package animation

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"glitch-scene/scene"
)

// ExtractClips reads every animation in doc. nodes maps document node
// indices to the loaded scene nodes whose names the tracks target.
// Morph target weights are skipped.
func ExtractClips(doc *gltf.Document, nodes []*scene.Node) ([]*Clip, error) {
	clips := make([]*Clip, 0, len(doc.Animations))
	for ai, anim := range doc.Animations {
		var tracks []*Track
		for i, ch := range anim.Channels {
			if ch.Target.Node == nil || *ch.Target.Node >= len(nodes) {
				continue
			}
			path, ok := trackPath(ch.Target.Path)
			if !ok {
				continue
			}
			if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
				return nil, fmt.Errorf("animation %q channel %d: invalid sampler index %d", anim.Name, i, ch.Sampler)
			}
			sampler := anim.Samplers[ch.Sampler]

			raw, err := modeler.ReadAccessor(doc, doc.Accessors[sampler.Input], nil)
			if err != nil {
				return nil, fmt.Errorf("animation %q channel %d: failed to read timestamps: %w", anim.Name, i, err)
			}
			times, ok := raw.([]float32)
			if !ok {
				return nil, fmt.Errorf("animation %q channel %d: timestamps are %T", anim.Name, i, raw)
			}

			raw, err = modeler.ReadAccessor(doc, doc.Accessors[sampler.Output], nil)
			if err != nil {
				return nil, fmt.Errorf("animation %q channel %d: failed to read values: %w", anim.Name, i, err)
			}
			values, err := flattenValues(raw)
			if err != nil {
				return nil, fmt.Errorf("animation %q channel %d: %w", anim.Name, i, err)
			}

			tracks = append(tracks, &Track{
				NodeName:      nodes[*ch.Target.Node].Name,
				Path:          path,
				Interpolation: trackInterpolation(sampler.Interpolation),
				Times:         times,
				Values:        values,
			})
		}

		name := anim.Name
		if name == "" {
			name = fmt.Sprintf("animation_%d", ai)
		}
		clips = append(clips, NewClip(name, tracks))
	}
	return clips, nil
}

func trackPath(p gltf.TRSProperty) (Path, bool) {
	switch p {
	case gltf.TRSTranslation:
		return PathTranslation, true
	case gltf.TRSRotation:
		return PathRotation, true
	case gltf.TRSScale:
		return PathScale, true
	}
	return 0, false
}

func trackInterpolation(i gltf.Interpolation) Interpolation {
	switch i {
	case gltf.InterpolationStep:
		return InterpolationStep
	case gltf.InterpolationCubicSpline:
		return InterpolationCubicSpline
	}
	return InterpolationLinear
}

// flattenValues turns accessor data into float components. Normalized
// integer rotations (KHR_mesh_quantization) are mapped back to [-1, 1].
func flattenValues(raw any) ([]float32, error) {
	switch v := raw.(type) {
	case [][3]float32:
		out := make([]float32, 0, len(v)*3)
		for _, e := range v {
			out = append(out, e[:]...)
		}
		return out, nil
	case [][4]float32:
		out := make([]float32, 0, len(v)*4)
		for _, e := range v {
			out = append(out, e[:]...)
		}
		return out, nil
	case [][4]int8:
		return normalize4(v, func(c int8) float32 { return max(float32(c)/127, -1) }), nil
	case [][4]uint8:
		return normalize4(v, func(c uint8) float32 { return float32(c) / 255 }), nil
	case [][4]int16:
		return normalize4(v, func(c int16) float32 { return max(float32(c)/32767, -1) }), nil
	case [][4]uint16:
		return normalize4(v, func(c uint16) float32 { return float32(c) / 65535 }), nil
	}
	return nil, fmt.Errorf("unsupported keyframe data %T", raw)
}

func normalize4[T int8 | uint8 | int16 | uint16](v [][4]T, conv func(T) float32) []float32 {
	out := make([]float32, 0, len(v)*4)
	for _, e := range v {
		for _, c := range e {
			out = append(out, conv(c))
		}
	}
	return out
}
