package connector

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/authqr/operator/pkg/portal"
	"github.com/authqr/operator/pkg/portal/event"
)

const consoleHelp = `Commands:
  status                 show the monitoring view
  verify <qr payload>    verify a scanned identity
  resolve <alert id>     mark an alert as handled
  login <user> <pass>    log in again after the session ended
  logout                 end the session and forget the credential
  help                   show this text
  quit                   leave, keeping the credential for next time
`

// Console is the interactive monitor. It prints controller events as they
// arrive and executes commands read line by line.
type Console struct {
	oc  *OperatorConnector
	log zerolog.Logger

	lock           sync.Mutex
	out            io.Writer
	lastUnresolved int
}

func NewConsole(oc *OperatorConnector, out io.Writer) *Console {
	con := &Console{
		oc:             oc,
		log:            oc.Log.With().Str("component", "console").Logger(),
		out:            out,
		lastUnresolved: -1,
	}
	oc.Controller.SetEventHandler(con.HandlePortalEvent)
	return con
}

func (con *Console) printf(format string, args ...any) {
	con.lock.Lock()
	defer con.lock.Unlock()
	_, _ = fmt.Fprintf(con.out, format, args...)
}

func (con *Console) HandlePortalEvent(rawEvt any) {
	switch evt := rawEvt.(type) {
	case *event.LoggedIn:
		con.lock.Lock()
		con.lastUnresolved = -1
		con.lock.Unlock()
		if evt.Resumed {
			con.printf("Resumed stored session. Verify an identity to see alerts.\n")
		} else {
			con.printf("Logged in. Verify an identity to see alerts.\n")
		}
	case *event.SessionExpired:
		con.printf("%s\n", evt.Message)
	case *event.LoggedOut:
		con.printf("Logged out.\n")
	case *event.AlertsUpdated:
		con.lock.Lock()
		changed := evt.Unresolved != con.lastUnresolved
		con.lastUnresolved = evt.Unresolved
		con.lock.Unlock()
		if changed {
			con.printf("Unresolved alerts: %d (of %d)\n", evt.Unresolved, evt.Total)
		}
	case *event.IdentityVerified:
		con.printf("Verified %s (verification #%d)\n", evt.Identity.Name, evt.Count)
	case *event.AlertResolved:
		con.printf("Alert #%d resolved.\n", evt.AlertID)
	case *event.VitalsUpdated, *event.ClockTick:
	default:
		con.log.Debug().Type("event_type", rawEvt).Msg("Unhandled portal event")
	}
}

// Exec runs one command line. It reports false when the console should
// stop.
func (con *Console) Exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	command, args := strings.ToLower(fields[0]), fields[1:]
	ctrl := con.oc.Controller

	switch command {
	case "quit", "exit":
		return false
	case "help", "?":
		con.printf("%s", consoleHelp)
	case "status", "alerts":
		snap := ctrl.Snapshot()
		con.lock.Lock()
		WriteSnapshot(con.out, snap)
		con.lock.Unlock()
	case "verify":
		if len(args) == 0 {
			con.printf("Usage: verify <qr payload>\n")
			break
		}
		start := time.Now()
		identity, err := ctrl.VerifyQR(ctx, strings.Join(args, " "))
		if err != nil {
			con.printf("%s\n", portal.UserMessage(err))
			break
		}
		con.printf("Identity OK: %s <%s> in %s\n", identity.Name, identity.Email, formatDuration(time.Since(start)))
	case "resolve":
		if len(args) != 1 {
			con.printf("Usage: resolve <alert id>\n")
			break
		}
		alertID, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
		if err != nil {
			con.printf("Invalid alert id %q\n", args[0])
			break
		}
		if err = ctrl.ResolveAlert(ctx, alertID); err != nil {
			con.printf("%s\n", portal.UserMessage(err))
		}
	case "login":
		if len(args) != 2 {
			con.printf("Usage: login <username> <password>\n")
			break
		}
		if err := ctrl.Login(ctx, args[0], args[1]); err != nil {
			con.printf("%s\n", portal.UserMessage(err))
		}
	case "logout":
		ctrl.Logout()
	default:
		con.printf("Unknown command %q, type help for a list.\n", command)
	}
	return true
}
