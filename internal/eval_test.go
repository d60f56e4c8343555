package internal_test

import (
	"reflect"
	"testing"

	"github.com/zephyrtronium/cscript/internal"
	"github.com/zephyrtronium/cscript/testutils"
)

// TestAssignment tests that assignments bind variables and evaluate to the
// stored value.
func TestAssignment(t *testing.T) {
	cases := map[string]testutils.SourceTestCase{
		"Value":   {Source: "assignX = 10;", Pass: testutils.PassEqual(int32(10))},
		"Read":    {Source: "assignY = 10; assignY;", Pass: testutils.PassEqual(int32(10))},
		"Chain":   {Source: "assignA = assignB = 'q'; assignB;", Pass: testutils.PassEqual(internal.Char('q'))},
		"Rebind":  {Source: "assignZ = 1; assignZ = \"two\"; assignZ;", Pass: testutils.PassEqual("two")},
		"Null":    {Source: "assignN = null; assignN;", Pass: testutils.PassEqual(nil)},
		"Dict":    {Source: "assignD = dict(); assignD.k = 1l; assignD.k;", Pass: testutils.PassEqual(int64(1))},
		"Missing": {Source: "neverAssignedAnywhere;", Pass: testutils.PassError("AccessError", `variable "neverAssignedAnywhere" not found`)},
		"DictMissingKey": {
			Source: "assignE = dict(); assignE.nope;",
			Pass:   testutils.PassError("AccessError", `no property "nope" in dict`),
		},
		"NullPath": {
			Source: "unboundRoot.prop;",
			Pass:   testutils.PassError("AccessError", `cannot access property "prop" on a null value`),
		},
		"AssignNullPath": {
			Source: "unboundRoot.prop = 1;",
			Pass:   testutils.PassError("AccessError", "null value"),
		},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc(name))
	}
}

// TestLastStatement tests that a chunk evaluates to its last statement.
func TestLastStatement(t *testing.T) {
	cases := map[string]testutils.SourceTestCase{
		"Empty":    {Source: "", Pass: testutils.PassEqual(nil)},
		"Comment":  {Source: "// nothing", Pass: testutils.PassEqual(nil)},
		"Last":     {Source: "1; 2l; 3d;", Pass: testutils.PassEqual(float64(3))},
		"Function": {Source: "() { };", Pass: testutils.PassType(reflect.TypeOf(&internal.FunctionLiteral{}))},
		"Builtin":  {Source: "return;", Pass: testutils.PassType(reflect.TypeOf(&internal.Builtin{}))},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc(name))
	}
}

// TestClosures tests calling closures.
func TestClosures(t *testing.T) {
	cases := map[string]testutils.SourceTestCase{
		"Return": {
			Source: "closureId = (a) { return(a); }; closureId(5);",
			Pass:   testutils.PassEqual(int32(5)),
		},
		"NoReturn": {
			Source: "closureNone = (a) { a; }; closureNone(5);",
			Pass:   testutils.PassEqual(nil),
		},
		"EmptyReturn": {
			Source: "closureEmpty = () { return(); 1; }; closureEmpty();",
			Pass:   testutils.PassEqual(nil),
		},
		"ReturnStopsBody": {
			Source: "closureStop = () { return(1); neverReached(); }; closureStop();",
			Pass:   testutils.PassEqual(int32(1)),
		},
		"Immediate": {
			Source: "(a, b) { return(b); }(1, 2);",
			Pass:   testutils.PassEqual(int32(2)),
		},
		"Curried": {
			Source: "closureMk = () { return((x) { return(x); }); }; closureMk()('z');",
			Pass:   testutils.PassEqual(internal.Char('z')),
		},
		"Variadic": {
			Source: "closureVar = (a, ...rest) { return(rest); }; closureVar(1, 2, 3, 4);",
			Pass:   testutils.PassEqual([]internal.Value{int32(2), int32(3), int32(4)}),
		},
		"VariadicEmpty": {
			Source: "closureVarE = (a, ...rest) { return(rest); }; closureVarE(1);",
			Pass:   testutils.PassEqual([]internal.Value{}),
		},
		"VariadicOnly": {
			Source: "(...all) { return(all); }(\"x\", 'y');",
			Pass:   testutils.PassEqual([]internal.Value{"x", internal.Char('y')}),
		},
		"TooFew": {
			Source: "(a, b) { }(1);",
			Pass:   testutils.PassError("ArityError", "closure (a, b) takes 2 arguments, got 1"),
		},
		"TooMany": {
			Source: "() { }(1);",
			Pass:   testutils.PassError("ArityError", "takes 0 arguments, got 1"),
		},
		"VariadicTooFew": {
			Source: "(a, b, ...c) { }(1);",
			Pass:   testutils.PassError("ArityError", "takes at least 2 arguments, got 1"),
		},
		"NotCallable": {
			Source: "closureInt = 1; closureInt();",
			Pass:   testutils.PassError("AccessError", "closureInt is not callable (int32)"),
		},
		"CallNull": {
			Source: "null();",
			Pass:   testutils.PassError("AccessError", "not callable (null)"),
		},
		"ArgumentError": {
			Source: "closureId2 = (a) { return(a); }; closureId2(missingArgument);",
			Pass:   testutils.PassError("AccessError", "missingArgument"),
		},
		"ErrorInBody": {
			Source: "closureBad = () { missingInBody; }; closureBad();",
			Pass:   testutils.PassError("AccessError", "missingInBody"),
		},
		"Recursion": {
			Source: "closureRec = (n) { ifThen(n, () { return(closureRec(null)); }); return(\"base\"); }; closureRec(true);",
			Pass:   testutils.PassEqual("base"),
		},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc(name))
	}
}

// TestScoping tests that closures see only their own frame and the globals.
func TestScoping(t *testing.T) {
	cases := map[string]testutils.SourceTestCase{
		"LocalDoesNotLeak": {
			Source: "scopeG = () { scopeInner = 1; return(scopeInner); }; scopeG(); scopeInner;",
			Pass:   testutils.PassError("AccessError", `variable "scopeInner" not found`),
		},
		"OuterLocalInvisible": {
			Source: "scopeOuter = () { secret = 5; inner = () { return(secret); }; return(inner()); }; scopeOuter();",
			Pass:   testutils.PassError("AccessError", `variable "secret" not found`),
		},
		"GlobalsVisible": {
			Source: "scopeGV = 7; () { return(scopeGV); }();",
			Pass:   testutils.PassEqual(int32(7)),
		},
		"LocalShadowsGlobal": {
			Source: "scopeSh = 1; () { scopeSh = 2; return(scopeSh); }();",
			Pass:   testutils.PassEqual(int32(2)),
		},
		"ShadowLeavesGlobal": {
			Source: "scopeSh2 = 1; () { scopeSh2 = 2; }(); scopeSh2;",
			Pass:   testutils.PassEqual(int32(1)),
		},
		"ParamShadowsGlobal": {
			Source: "scopeP = 1; (scopeP) { return(scopeP); }(2);",
			Pass:   testutils.PassEqual(int32(2)),
		},
		"WriteGlobal": {
			Source: "() { globals.scopeW = 3; }(); scopeW;",
			Pass:   testutils.PassEqual(int32(3)),
		},
		"ReadGlobalWhenShadowed": {
			Source: "scopeR = 4; () { scopeR = 5; return(globals.scopeR); }();",
			Pass:   testutils.PassEqual(int32(4)),
		},
		"CallbackFrame": {
			Source: "scopeCB = () { mine = 1; ifThen(true, () { return(mine); }); }; scopeCB();",
			Pass:   testutils.PassError("AccessError", `variable "mine" not found`),
		},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc(name))
	}
}

// TestFrameBalance tests that every call pops its frame however it ends.
func TestFrameBalance(t *testing.T) {
	env := internal.NewEnv()
	chunks := []string{
		"f = () { return(1); }; f();",
		"g = () { missing; }; g();",
		"h = (a) { }; h();",
		"tryCatch(() { missing; }, (e) { return(e); });",
		"forEach(5, (x) { });",
		"() { () { () { nope; }(); }(); }();",
	}
	for _, src := range chunks {
		env.DoString(src)
		if n := env.Depth(); n != 0 {
			t.Errorf("%q left %d frames", src, n)
		}
	}
}

// TestTopLevelReturn tests that a return outside any closure ends the chunk.
func TestTopLevelReturn(t *testing.T) {
	env := internal.NewEnv()
	r, stop, err := env.DoString("return(5); neverSet = 1;")
	if err != nil {
		t.Fatal(err)
	}
	if r != int32(5) || stop != internal.ReturnStop {
		t.Errorf("got %#v, %v; want 5, return", r, stop)
	}
	if _, ok := env.Global("neverSet"); ok {
		t.Error("statement after top-level return was evaluated")
	}
	// The next chunk runs normally.
	r, stop, err = env.DoString("1;")
	if err != nil || r != int32(1) || stop != internal.NoStop {
		t.Errorf("chunk after return gave %#v, %v, %v", r, stop, err)
	}
}

// TestErrorRecovery tests that a failed chunk leaves the Env usable.
func TestErrorRecovery(t *testing.T) {
	env := internal.NewEnv()
	if _, _, err := env.DoString("w.prop;"); err == nil {
		t.Fatal("access through null succeeded")
	} else if k := internal.ErrorKind(err); k != "AccessError" {
		t.Errorf("access through null gave %s: %v", k, err)
	}
	if _, _, err := env.DoString("before = 1; missing; after = 2;"); err == nil {
		t.Fatal("missing variable succeeded")
	}
	if _, ok := env.Global("before"); !ok {
		t.Error("statement before the error was not kept")
	}
	if _, ok := env.Global("after"); ok {
		t.Error("statement after the error was evaluated")
	}
	r, _, err := env.DoString("before;")
	if err != nil || r != int32(1) {
		t.Errorf("env unusable after error: %#v, %v", r, err)
	}
}

// TestIsScriptError tests the classification of errors.
func TestIsScriptError(t *testing.T) {
	cases := map[string]struct {
		err    error
		script bool
		kind   string
	}{
		"Parse":     {&internal.ParseError{Msg: "x"}, true, "ParseError"},
		"Access":    {&internal.AccessError{Msg: "x"}, true, "AccessError"},
		"Arity":     {&internal.ArityError{Name: "f"}, true, "ArityError"},
		"Iteration": {&internal.IterationError{}, true, "IterationError"},
		"Type":      {&internal.TypeError{Msg: "x"}, true, "TypeError"},
		"HostError": {&internal.HostFault{Category: "host error", Err: errTest}, false, "host error"},
		"Panic":     {&internal.HostFault{Category: "panic", Err: errTest}, false, "panic"},
		"Plain":     {errTest, false, "error"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if got := internal.IsScriptError(c.err); got != c.script {
				t.Errorf("IsScriptError is %t, want %t", got, c.script)
			}
			if got := internal.ErrorKind(c.err); got != c.kind {
				t.Errorf("ErrorKind is %q, want %q", got, c.kind)
			}
		})
	}
}

type testError struct{}

func (testError) Error() string { return "test error" }

var errTest error = testError{}
