package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	flag "maunium.net/go/mauflag"

	"github.com/authqr/operator/pkg/authqrgo/routing/payload"
	"github.com/authqr/operator/pkg/connector"
	"github.com/authqr/operator/pkg/portal"
)

// Information to find out exactly which commit the binary was built from.
// These are filled at build time with the -X linker flag.
var (
	Tag       = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var configPath = flag.MakeFull("c", "config", "The path to your config file. Built-in defaults are used if empty.", "").String()
var writeExampleConfig = flag.MakeFull("e", "generate-example-config", "Print the example config to stdout and exit.", "false").Bool()
var version = flag.MakeFull("v", "version", "View version and exit.", "false").Bool()
var wantHelp, _ = flag.MakeHelpFlag()

const commandUsage = `[-c <path>] <command> [args...]

Operator commands:
  register <username> <email> <password>
  login <username> <password>
  logout
  monitor

End user commands:
  user-register <name> <email> <phone> <voter id> <pan id>
  user-login <email> <phone>
  sos <email> <latitude> <longitude> [message...]`

func main() {
	flag.SetHelpTitles("authqr-operator - QR identity verification and emergency monitoring console.", "authqr-operator "+commandUsage)
	err := flag.Parse()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		flag.PrintHelp()
		os.Exit(1)
	} else if *wantHelp {
		flag.PrintHelp()
		os.Exit(0)
	} else if *version {
		fmt.Printf("authqr-operator %s (commit %s, built %s)\n", Tag, Commit, BuildTime)
		os.Exit(0)
	} else if *writeExampleConfig {
		fmt.Print(portal.ExampleConfig)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.PrintHelp()
		os.Exit(1)
	}

	cfg, err := portal.LoadConfig(*configPath)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(10)
	}
	log, logCloser, err := portal.NewLogger(cfg.Logging)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(11)
	}
	defer logCloser.Close()

	oc, err := connector.NewConnector(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize")
		os.Exit(12)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	if err = run(ctx, oc, args[0], args[1:]); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, portal.UserMessage(err))
		log.Debug().Err(err).Str("command", args[0]).Msg("Command failed")
		stop()
		logCloser.Close()
		os.Exit(2)
	}
}

func run(ctx context.Context, oc *connector.OperatorConnector, command string, args []string) error {
	switch command {
	case "register":
		if len(args) != 3 {
			return usageError("register <username> <email> <password>")
		}
		message, err := oc.Controller.Register(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Println(message)
	case "login":
		if len(args) != 2 {
			return usageError("login <username> <password>")
		}
		if err := oc.Login(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Println("Login successful.")
	case "logout":
		oc.Controller.Logout()
		fmt.Println("Logged out.")
	case "monitor":
		return monitor(ctx, oc)
	case "user-register":
		if len(args) != 5 {
			return usageError("user-register <name> <email> <phone> <voter id> <pan id>")
		}
		card, err := oc.RegisterUser(ctx, payload.RegisterUserPayload{
			Name:    args[0],
			Email:   args[1],
			Phone:   args[2],
			VoterID: args[3],
			PanID:   args[4],
		})
		if err != nil {
			return err
		}
		connector.WriteUserCard(os.Stdout, card)
	case "user-login":
		if len(args) != 2 {
			return usageError("user-login <email> <phone>")
		}
		card, err := oc.LoginUser(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		connector.WriteUserCard(os.Stdout, card)
	case "sos":
		if len(args) < 3 {
			return usageError("sos <email> <latitude> <longitude> [message...]")
		}
		alertID, err := oc.SendSOS(ctx, args[0], args[1], args[2], strings.Join(args[3:], " "))
		if err != nil {
			return err
		}
		fmt.Printf("Emergency alert %s sent.\n", alertID)
	default:
		return usageError(commandUsage)
	}
	return nil
}

type usageError string

func (ue usageError) Error() string {
	return "Usage: authqr-operator " + string(ue)
}
