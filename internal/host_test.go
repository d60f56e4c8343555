package internal_test

import (
	"errors"
	"go/constant"
	"reflect"
	"testing"

	"github.com/traefik/yaegi/interp"

	"github.com/zephyrtronium/cscript/internal"
)

// Host types for interop tests, registered as .game.world.

type Vec struct {
	X, Y int32
}

func NewVec(x, y int32) *Vec {
	return &Vec{X: x, Y: y}
}

func NewVecF(x, y float64) *Vec {
	return &Vec{X: int32(x), Y: int32(y)}
}

func (v *Vec) Len2() int32 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec) Scaled(k int32) Vec {
	return Vec{X: v.X * k, Y: v.Y * k}
}

func (v *Vec) Fail() error {
	return errors.New("boom")
}

func (v *Vec) Explode() {
	panic("oops")
}

func (v *Vec) Pair() (int32, int32) {
	return v.X, v.Y
}

type inventory struct {
	Count int
	slots []string
}

type Stats struct {
	Level int32
}

type Player struct {
	Name string
	*Vec
	inventory
	Tags map[string]string

	hp int
}

func NewPlayer(name string) *Player {
	return &Player{
		Name:      name,
		Vec:       &Vec{X: 1, Y: 2},
		inventory: inventory{Count: 3, slots: []string{"sword"}},
		Tags:      map[string]string{"home": "village"},
		hp:        100,
	}
}

func Apply(f func(int32) int32, x int32) int32 {
	return f(x)
}

// Later keeps f and g to be called after it returns.
func Later(f func(int32) int32, g func() error) {
	later, laterErr = f, g
}

var (
	later    func(int32) int32
	laterErr func() error
)

func Sum(xs ...int32) int32 {
	var s int32
	for _, x := range xs {
		s += x
	}
	return s
}

var Gravity = 9.8

var worldSymbols = interp.Exports{
	"game/world/world": {
		"Vec":          reflect.ValueOf((*Vec)(nil)),
		"NewVec":       reflect.ValueOf(NewVec),
		"NewVecF":      reflect.ValueOf(NewVecF),
		"Player":       reflect.ValueOf((*Player)(nil)),
		"Player.Stats": reflect.ValueOf((*Stats)(nil)),
		"NewPlayer":    reflect.ValueOf(NewPlayer),
		"Apply":        reflect.ValueOf(Apply),
		"Sum":          reflect.ValueOf(Sum),
		"Later":        reflect.ValueOf(Later),
		"Gravity":      reflect.ValueOf(&Gravity).Elem(),
		"Answer":       reflect.ValueOf(constant.MakeInt64(42)),
		"Greeting":     reflect.ValueOf(constant.MakeString("hi")),
		"Half":         reflect.ValueOf(constant.MakeFloat64(0.5)),
		"_hidden":      reflect.ValueOf(Sum),
	},
}

// worldEnv creates an Env with the test host types registered.
func worldEnv(t *testing.T) *internal.Env {
	t.Helper()
	env := internal.NewEnv()
	if err := env.Types.Use(worldSymbols); err != nil {
		t.Fatal(err)
	}
	return env
}

// hostCase is an evaluation test case against worldEnv.
type hostCase struct {
	src  string
	want internal.Value
	// kind is the expected error kind, or empty if the chunk should succeed.
	kind string
}

func runHostCases(t *testing.T, cases map[string]hostCase) {
	t.Helper()
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			env := worldEnv(t)
			r, _, err := env.DoString(c.src)
			if c.kind != "" {
				if err == nil {
					t.Fatalf("%q succeeded with %s, want %s", c.src, internal.Display(r), c.kind)
				}
				if k := internal.ErrorKind(err); k != c.kind {
					t.Errorf("%q failed with %s (%v), want %s", c.src, k, err, c.kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("%q failed: %s: %v", c.src, internal.ErrorKind(err), err)
			}
			if !reflect.DeepEqual(r, c.want) {
				t.Errorf("%q gave %#v (%T), want %#v (%T)", c.src, r, r, c.want, c.want)
			}
			if n := env.Depth(); n != 0 {
				t.Errorf("%q left %d frames", c.src, n)
			}
		})
	}
}
