package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/integrator"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

var (
	ErrInvalidSceneFile = errors.New("scene: invalid scene file")
	ErrUnknownMaterial  = errors.New("scene: unknown material")
)

// Material type names used in scene files
const (
	MaterialLambertian = "lambertian"
	MaterialMetal      = "metal"
	MaterialDielectric = "dielectric"
)

// vec3JSON is a Vec3 stored as [x, y, z]
type vec3JSON [3]float64

func (v vec3JSON) vec() core.Vec3 { return core.NewVec3(v[0], v[1], v[2]) }

func toJSON(v core.Vec3) vec3JSON { return vec3JSON{v.X, v.Y, v.Z} }

// File is the on-disk scene description. Spheres refer to materials by name.
type File struct {
	Camera     CameraJSON              `json:"camera"`
	Sampling   SamplingConfig          `json:"sampling"`
	Background *BackgroundJSON         `json:"background,omitempty"`
	Materials  map[string]MaterialJSON `json:"materials"`
	Spheres    []SphereJSON            `json:"spheres"`
}

type CameraJSON struct {
	LookFrom      vec3JSON `json:"lookFrom"`
	LookAt        vec3JSON `json:"lookAt"`
	Up            vec3JSON `json:"up"`
	VFov          float64  `json:"vfov"`
	AspectRatio   float64  `json:"aspectRatio"`
	Aperture      float64  `json:"aperture"`
	FocusDistance float64  `json:"focusDistance"`
}

type BackgroundJSON struct {
	Top    vec3JSON `json:"top"`
	Bottom vec3JSON `json:"bottom"`
}

// MaterialJSON describes one material. Only the fields of its type are used.
type MaterialJSON struct {
	Type   string   `json:"type"`
	Albedo vec3JSON `json:"albedo"`
	Fuzz   float64  `json:"fuzz,omitempty"`
	IOR    float64  `json:"ior,omitempty"`
}

type SphereJSON struct {
	Center   vec3JSON `json:"center"`
	Radius   float64  `json:"radius"`
	Material string   `json:"material"`
}

// Load reads a Scene from a JSON file.
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scene description and builds the scene
func Parse(r io.Reader) (*Scene, error) {
	var file File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidSceneFile, err)
	}
	return file.Build()
}

// Build converts the description into a validated scene
func (f *File) Build() (*Scene, error) {
	if f.Sampling.Width <= 0 || f.Sampling.SamplesPerPixel <= 0 || f.Sampling.MaxDepth < 0 {
		return nil, fmt.Errorf("%w: sampling width %d, samples %d, depth %d",
			ErrInvalidSceneFile, f.Sampling.Width, f.Sampling.SamplesPerPixel, f.Sampling.MaxDepth)
	}

	s, err := New(f.Camera.config(), f.Sampling)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSceneFile, err)
	}
	if f.Background != nil {
		s.Background = integrator.Background{Top: f.Background.Top.vec(), Bottom: f.Background.Bottom.vec()}
	}

	materials := make(map[string]material.Material, len(f.Materials))
	for name, m := range f.Materials {
		mat, err := m.build()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = mat
	}

	for i, sphere := range f.Spheres {
		mat, ok := materials[sphere.Material]
		if !ok {
			return nil, fmt.Errorf("sphere %d: %w %q", i, ErrUnknownMaterial, sphere.Material)
		}
		if err := s.Add(geometry.NewSphere(sphere.Center.vec(), sphere.Radius, mat)); err != nil {
			return nil, fmt.Errorf("%w: sphere %d: %w", ErrInvalidSceneFile, i, err)
		}
	}

	return s, nil
}

func (c CameraJSON) config() geometry.CameraConfig {
	return geometry.CameraConfig{
		LookFrom:      c.LookFrom.vec(),
		LookAt:        c.LookAt.vec(),
		Up:            c.Up.vec(),
		VFov:          c.VFov,
		AspectRatio:   c.AspectRatio,
		Aperture:      c.Aperture,
		FocusDistance: c.FocusDistance,
	}
}

func (m MaterialJSON) build() (material.Material, error) {
	switch m.Type {
	case MaterialLambertian:
		return material.NewLambertian(m.Albedo.vec()), nil
	case MaterialMetal:
		return material.NewMetal(m.Albedo.vec(), m.Fuzz), nil
	case MaterialDielectric:
		if !(m.IOR > 0) {
			return nil, fmt.Errorf("%w: dielectric ior %g", ErrInvalidSceneFile, m.IOR)
		}
		return material.NewDielectric(m.IOR), nil
	}
	return nil, fmt.Errorf("%w: type %q", ErrUnknownMaterial, m.Type)
}

// Describe converts a scene of spheres back into a file description.
// Shared materials are written once and named in order of first use.
func Describe(s *Scene) (*File, error) {
	cc := s.CameraConfig
	f := &File{
		Camera: CameraJSON{
			LookFrom:      toJSON(cc.LookFrom),
			LookAt:        toJSON(cc.LookAt),
			Up:            toJSON(cc.Up),
			VFov:          cc.VFov,
			AspectRatio:   cc.AspectRatio,
			Aperture:      cc.Aperture,
			FocusDistance: cc.FocusDistance,
		},
		Sampling:   s.SamplingConfig,
		Background: &BackgroundJSON{Top: toJSON(s.Background.Top), Bottom: toJSON(s.Background.Bottom)},
		Materials:  make(map[string]MaterialJSON),
	}

	names := make(map[material.Material]string)
	for i, shape := range s.World.Shapes() {
		sphere, ok := shape.(*geometry.Sphere)
		if !ok {
			return nil, fmt.Errorf("%w: shape %d is %T, only spheres can be saved", ErrInvalidSceneFile, i, shape)
		}

		name, seen := names[sphere.Material]
		if !seen {
			m, err := describeMaterial(sphere.Material)
			if err != nil {
				return nil, fmt.Errorf("shape %d: %w", i, err)
			}
			name = fmt.Sprintf("%s%d", m.Type, len(names))
			names[sphere.Material] = name
			f.Materials[name] = m
		}

		f.Spheres = append(f.Spheres, SphereJSON{Center: toJSON(sphere.Center), Radius: sphere.Radius, Material: name})
	}

	return f, nil
}

func describeMaterial(m material.Material) (MaterialJSON, error) {
	switch mat := m.(type) {
	case *material.Lambertian:
		return MaterialJSON{Type: MaterialLambertian, Albedo: toJSON(mat.Albedo)}, nil
	case *material.Metal:
		return MaterialJSON{Type: MaterialMetal, Albedo: toJSON(mat.Albedo), Fuzz: mat.Fuzzness}, nil
	case *material.Dielectric:
		return MaterialJSON{Type: MaterialDielectric, IOR: mat.RefractiveIndex}, nil
	}
	return MaterialJSON{}, fmt.Errorf("%w: %T", ErrUnknownMaterial, m)
}

// Write encodes the scene as indented JSON
func Write(w io.Writer, s *Scene) error {
	f, err := Describe(s)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return nil
}

// Save writes a Scene to a JSON file.
func Save(path string, s *Scene) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scene: %w", err)
	}
	defer f.Close()

	if err := Write(f, s); err != nil {
		return err
	}
	return f.Close()
}
