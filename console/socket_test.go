package console_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/zephyrtronium/cscript/console"
	"github.com/zephyrtronium/cscript/internal"
)

func TestSocket(t *testing.T) {
	log, _ := test.NewNullLogger()
	setup := func(sh *internal.Shell) error {
		_, err := sh.Eval("greeting = \"hello\";")
		return err
	}
	srv := httptest.NewServer(console.Handler(log, setup))
	defer srv.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	send := func(line string) {
		t.Helper()
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			t.Fatal(err)
		}
	}
	recv := func() string {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatal(err)
		}
		return string(msg)
	}

	send("greeting;")
	if got := recv(); got != "hello" {
		t.Errorf("greeting is %q", got)
	}
	send("f = () {")
	send("  return(2);")
	send("};")
	if got := recv(); got != "<closure () { return(2); }>" {
		t.Errorf("definition printed %q", got)
	}
	send("f();")
	if got := recv(); got != "2" {
		t.Errorf("call printed %q", got)
	}
	send("missing;")
	if got := recv(); got != `AccessError: variable "missing" not found` {
		t.Errorf("error printed %q", got)
	}
	send("session;")
	if got := recv(); len(got) != 36 {
		t.Errorf("session is %q", got)
	}
}

func TestSocketSetupFailure(t *testing.T) {
	log, _ := test.NewNullLogger()
	setup := func(sh *internal.Shell) error {
		_, err := sh.Eval("missingInSetup;")
		return err
	}
	srv := httptest.NewServer(console.Handler(log, setup))
	defer srv.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(msg), "missingInSetup") {
		t.Errorf("setup error printed %q", msg)
	}
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("connection not closed normally: %v", err)
	}
}

func TestSocketCloseTwice(t *testing.T) {
	errs := make(chan [2]error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var up websocket.Upgrader
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			errs <- [2]error{err, err}
			return
		}
		s := console.NewSocket(conn)
		first := s.Close()
		errs <- [2]error{first, s.Close()}
	}))
	defer srv.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	got := <-errs
	if got[0] != nil {
		t.Errorf("first close failed: %v", got[0])
	}
	if got[1] == nil {
		t.Error("second close reported no error")
	}
}
