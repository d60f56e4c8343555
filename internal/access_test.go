package internal_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/zephyrtronium/cscript/internal"
)

const (
	newVec    = "v = .game.world.Vec(3, 4); "
	newPlayer = "p = .game.world.Player(\"hero\"); "
)

// TestConstructors tests calling types to construct host values.
func TestConstructors(t *testing.T) {
	runHostCases(t, map[string]hostCase{
		"New":          {src: ".game.world.Vec(1, 2);", want: &Vec{X: 1, Y: 2}},
		"Convert":      {src: ".game.world.Vec(1l, 2l);", want: &Vec{X: 1, Y: 2}},
		"Overload":     {src: ".game.world.Vec(1.5d, 2d);", want: &Vec{X: 1, Y: 2}},
		"Float":        {src: ".game.world.Vec(1.5, 2.5);", want: &Vec{X: 1, Y: 2}},
		"Zero":         {src: ".game.world.Vec();", want: &Vec{}},
		"Nested":       {src: ".game.world.Player.Stats();", want: &Stats{}},
		"NestedOnItem": {src: newPlayer + "st = p.stats; st();", want: &Stats{}},
		"Arity":        {src: ".game.world.Vec(1);", kind: "AccessError"},
		"Overflow":     {src: ".game.world.Vec(3000000000l, 1);", kind: "AccessError"},
		"WrongType":    {src: ".game.world.Vec(\"a\", \"b\");", kind: "AccessError"},
		"Unknown":      {src: ".game.world.Nope;", kind: "AccessError"},
		"NoPackage":    {src: ".nowhere.Thing();", kind: "AccessError"},
	})
}

// TestHostMethods tests calling methods of host values.
func TestHostMethods(t *testing.T) {
	runHostCases(t, map[string]hostCase{
		"Pointer":        {src: newVec + "v.len2();", want: int32(25)},
		"ExactName":      {src: newVec + "v.Len2();", want: int32(25)},
		"Value":          {src: newVec + "s = v.scaled(2); s.x;", want: int32(6)},
		"PointerOnValue": {src: newVec + "s = v.scaled(1); s.len2();", want: int32(25)},
		"Results":        {src: newVec + "v.pair();", want: []internal.Value{int32(3), int32(4)}},
		"Promoted":       {src: newPlayer + "p.len2();", want: int32(5)},
		"Expression":     {src: newVec + ".game.world.Vec.len2(v);", want: int32(25)},
		"HostError":      {src: newVec + "v.fail();", kind: "host error"},
		"Panic":          {src: newVec + "v.explode();", kind: "panic"},
		"Arity":          {src: newVec + "v.len2(1);", kind: "AccessError"},
		"Missing":        {src: newVec + "v.nope();", kind: "AccessError"},
	})
}

// TestHostFields tests reading and writing fields of host values.
func TestHostFields(t *testing.T) {
	runHostCases(t, map[string]hostCase{
		"Read":             {src: newVec + "v.x;", want: int32(3)},
		"ReadExact":        {src: newVec + "v.Y;", want: int32(4)},
		"Write":            {src: newVec + "v.x = 10; v.x;", want: int32(10)},
		"WriteConvert":     {src: newVec + "v.x = 10l; v.x;", want: int32(10)},
		"WriteResult":      {src: newVec + "v.x = 10l;", want: int64(10)},
		"WriteWrongType":   {src: newVec + "v.x = \"a\";", kind: "AccessError"},
		"WriteOverflow":    {src: newVec + "v.x = 3000000000l;", kind: "AccessError"},
		"WriteCopy":        {src: newVec + "s = v.scaled(1); s.x = 1;", kind: "AccessError"},
		"Missing":          {src: newVec + "v.nope;", kind: "AccessError"},
		"Exported":         {src: newPlayer + "p.name;", want: "hero"},
		"Promoted":         {src: newPlayer + "p.y;", want: int32(2)},
		"Unexported":       {src: newPlayer + "p.hp;", want: 100},
		"WriteUnexported":  {src: newPlayer + "p.hp = 5; p.hp;", want: 5},
		"HiddenEmbedding":  {src: newPlayer + "p.count;", want: 3},
		"HiddenInHidden":   {src: newPlayer + "p.slots;", want: []string{"sword"}},
		"MapKey":           {src: newPlayer + "p.tags.home;", want: "village"},
		"WriteMapKey":      {src: newPlayer + "p.tags.away = \"castle\"; p.tags.away;", want: "castle"},
		"MissingMapKey":    {src: newPlayer + "p.tags.away;", kind: "AccessError"},
		"FieldOfType":      {src: ".game.world.Vec.x;", kind: "AccessError"},
		"WriteOnType":      {src: "t = .game.world.Vec; t.x = 1;", kind: "AccessError"},
		"NilEmbedded":      {src: "p = .game.world.Player(); p.x;", kind: "AccessError"},
		"NullIntermediate": {src: "p = .game.world.Player(); p.vec.x;", kind: "AccessError"},
	})
}

// TestHostPackages tests package-level symbols.
func TestHostPackages(t *testing.T) {
	runHostCases(t, map[string]hostCase{
		"Func":          {src: ".game.world.Sum(1, 2, 3);", want: int32(6)},
		"FuncNoArgs":    {src: ".game.world.Sum();", want: int32(0)},
		"FuncConvert":   {src: ".game.world.Sum(1l, 2);", want: int32(3)},
		"Var":           {src: ".game.world.Gravity;", want: 9.8},
		"IntConst":      {src: ".game.world.Answer;", want: int64(42)},
		"StringConst":   {src: ".game.world.Greeting;", want: "hi"},
		"FloatConst":    {src: ".game.world.Half;", want: 0.5},
		"Mapping":       {src: "w = .game.world; w.sum(4);", want: int32(4)},
		"Callback":      {src: ".game.world.Apply((n) { return(n); }, 7);", want: int32(7)},
		"BuiltinCB":     {src: ".game.world.Apply(return, 7);", want: int32(7)},
		"CallbackError": {src: ".game.world.Apply((n) { return(nope); }, 7);", kind: "AccessError"},
		"CallbackType":  {src: ".game.world.Apply((n) { return(\"s\"); }, 7);", kind: "TypeError"},
		"CallbackVoid":  {src: ".game.world.Apply((n) { }, 7);", kind: "TypeError"},
		"WriteFunc":     {src: "w = .game.world; w.sum = 1;", kind: "AccessError"},
		"MissingSymbol": {src: "w = .game.world; w.nope;", kind: "AccessError"},
	})
}

// TestHostPackageVar tests assigning package variables.
func TestHostPackageVar(t *testing.T) {
	defer func(g float64) { Gravity = g }(Gravity)
	env := worldEnv(t)
	r, _, err := env.DoString("w = .game.world; w.gravity = 2d; .game.world.Gravity;")
	if err != nil {
		t.Fatal(err)
	}
	if r != 2.0 {
		t.Errorf("got %#v, want 2.0", r)
	}
	if Gravity != 2 {
		t.Errorf("host variable is %v, want 2", Gravity)
	}
	if _, _, err := env.DoString("w.gravity = 1;"); err == nil {
		t.Error("assigning int32 to float64 succeeded")
	}
}

// TestHostGlobals tests host values installed directly as globals.
func TestHostGlobals(t *testing.T) {
	env := internal.NewEnv()
	env.SetGlobals(internal.Bindings{
		"hero":  NewPlayer("hero"),
		"names": []string{"a", "b"},
		"index": map[string]int{"one": 1},
		"fn":    func(s string) int { return len(s) },
	})
	cases := map[string]struct {
		src  string
		want internal.Value
	}{
		"Field":  {"hero.name;", "hero"},
		"Method": {"hero.len2();", int32(5)},
		"Map":    {"index.one;", 1},
		"Func":   {"fn(\"four\");", 4},
		"Iterate": {
			"forEach(names, (n) { globals.lastName = n; }); lastName;",
			"b",
		},
		"SetMap": {"index.two = 2; index.two;", 2},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			r, _, err := env.DoString(c.src)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(r, c.want) {
				t.Errorf("%q gave %#v, want %#v", c.src, r, c.want)
			}
		})
	}
}

// TestRegistryUse tests malformed registrations.
func TestRegistryUse(t *testing.T) {
	r := internal.NewRegistry()
	if err := r.Use(map[string]map[string]reflect.Value{"nopath": {}}); err == nil {
		t.Error("key without a package name was accepted")
	}
	meta := map[string]map[string]reflect.Value{
		".": {"MapTypes": reflect.ValueOf(map[reflect.Value][]reflect.Type{})},
	}
	if err := r.Use(meta); err != nil {
		t.Errorf("interpreter metadata key rejected: %v", err)
	}
	if v, _, err := r.Resolve([]string{"MapTypes"}); err == nil {
		t.Errorf("interpreter metadata resolved to %#v", v)
	}
	if err := r.Use(worldSymbols); err != nil {
		t.Fatal(err)
	}
	tv := r.TypeOf(reflect.TypeOf(Vec{}))
	if got := tv.String(); got != ".game.world.Vec" {
		t.Errorf("registered type is %q", got)
	}
	if got := r.TypeOf(reflect.TypeOf(0)).String(); got != "int" {
		t.Errorf("unregistered type is %q", got)
	}
	v, rest, err := r.Resolve([]string{"game", "world", "Player", "Stats", "level"})
	if err != nil {
		t.Fatal(err)
	}
	if tv, ok := v.(*internal.TypeValue); !ok || tv.Type != reflect.TypeOf(Stats{}) {
		t.Errorf("resolved %#v", v)
	}
	if !reflect.DeepEqual(rest, []string{"level"}) {
		t.Errorf("left %q", rest)
	}
}

// TestLaterCallback tests script callbacks that host code keeps and calls
// after the host call that received them has returned.
func TestLaterCallback(t *testing.T) {
	env := worldEnv(t)
	log, hook := test.NewNullLogger()
	env.Log = log
	_, _, err := env.DoString(".game.world.Later((n) { return(missingLater); }, () { return(missingLater); });")
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan int32)
	go func() { done <- later(5) }()
	if got := <-done; got != 0 {
		t.Errorf("dropped callback gave %d", got)
	}
	if e := hook.LastEntry(); e == nil || e.Level != logrus.WarnLevel {
		t.Errorf("dropped callback logged %v", e)
	}
	if err := laterErr(); err == nil || !strings.Contains(err.Error(), "outside of a host call") {
		t.Errorf("callback with an error result gave %v", err)
	}
	if n := env.Depth(); n != 0 {
		t.Errorf("%d frames left", n)
	}
	// A kept callback runs normally when host code calls it during a call.
	env.SetGlobal("runLater", func() int32 { return later(2) })
	_, _, err = env.DoString("runLater();")
	if k := internal.ErrorKind(err); k != "AccessError" {
		t.Errorf("kept callback failed with %s (%v), want AccessError", k, err)
	}
	if n := env.Depth(); n != 0 {
		t.Errorf("%d frames left", n)
	}
}
