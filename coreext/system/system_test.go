package system_test

import (
	"runtime"
	"testing"

	"github.com/google/uuid"

	_ "github.com/zephyrtronium/cscript/coreext/system"
	"github.com/zephyrtronium/cscript/testutils"
)

func TestSystem(t *testing.T) {
	t.Setenv("CSCRIPT_SYSTEM_TEST", "present")
	cases := map[string]testutils.SourceTestCase{
		"Platform":  {Source: "platform;", Pass: testutils.PassEqual(runtime.GOOS)},
		"Arch":      {Source: "arch;", Pass: testutils.PassEqual(runtime.GOARCH)},
		"GoVersion": {Source: "goVersion;", Pass: testutils.PassEqual(runtime.Version())},
		"GetEnv":    {Source: "getEnv(\"CSCRIPT_SYSTEM_TEST\");", Pass: testutils.PassEqual("present")},
		"Unset":     {Source: "getEnv(\"CSCRIPT_SYSTEM_TEST_UNSET\");", Pass: testutils.PassEqual(nil)},
		"NotString": {Source: "getEnv(1);", Pass: testutils.PassError("TypeError", "argument 0 to getEnv must be a string")},
		"UUIDArity": {Source: "uuid(1);", Pass: testutils.PassError("ArityError", "uuid takes 0 arguments")},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc(name))
	}
}

func TestUUID(t *testing.T) {
	env := testutils.TestingEnv()
	a, _, err := env.DoString("uuid();")
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := env.DoString("uuid();")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("uuid repeated")
	}
	if _, err := uuid.Parse(a.(string)); err != nil {
		t.Errorf("%v: %v", a, err)
	}
}

func TestGlobals(t *testing.T) {
	names := []string{"platform", "platformVersion", "arch", "goVersion", "pid", "getEnv", "uuid"}
	testutils.CheckGlobals(t, testutils.TestingEnv(), names)
}
