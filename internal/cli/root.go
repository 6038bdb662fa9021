// Package cli is the kratos command line client. It renders the community
// feed and runs like/save/share/delete through the optimistic feed layer.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/kratos-hub/backend/internal/feed"
	"github.com/anonto42/kratos-hub/backend/internal/gateway"
	"github.com/anonto42/kratos-hub/backend/internal/models"
	"github.com/anonto42/kratos-hub/backend/internal/session"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errReported means the failure was already shown to the user as a notice
var errReported = errors.New("reported")

// env is what every subcommand works with once the root flags are resolved
type env struct {
	out      io.Writer
	errOut   io.Writer
	log      *logrus.Logger
	session  *session.Session
	client   *gateway.Client
	notifier feed.Notifier
}

func (e *env) newStore(limit int) *feed.Store {
	return feed.NewStore(e.client, e.session, feed.WithPageSize(limit), feed.WithStoreLogger(e.log))
}

// NewRootCommand builds the kratos command tree writing to out and errOut
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("KRATOS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	e := &env{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "kratos",
		Short:         "Browse and interact with The Kratos Hub community feed",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup(v)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.String("api-url", "http://localhost:8080", "base URL of the API (KRATOS_API_URL)")
	flags.String("token", "", "bearer token (KRATOS_TOKEN)")
	flags.Uint("user-id", 0, "ID of the signed-in user (KRATOS_USER_ID)")
	flags.Duration("timeout", 10*time.Second, "per-request timeout")
	flags.Bool("verbose", false, "log requests to stderr")
	for _, name := range []string{"api-url", "token", "user-id", "timeout", "verbose"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		newFeedCommand(e),
		newActionCommand(e, "like", "Like or unlike a post", like),
		newActionCommand(e, "save", "Save or unsave a post", save),
		newActionCommand(e, "share", "Share a post", share),
		newActionCommand(e, "delete", "Delete one of your posts", remove),
		newLikersCommand(e),
	)
	return root
}

func (e *env) setup(v *viper.Viper) error {
	e.log = logrus.New()
	e.log.SetOutput(e.errOut)
	e.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	e.log.SetLevel(logrus.WarnLevel)
	if v.GetBool("verbose") {
		e.log.SetLevel(logrus.DebugLevel)
	}

	userID := v.GetUint("user-id")
	token := v.GetString("token")
	if userID == 0 || token == "" {
		return errors.New("a user id and token are required (set KRATOS_USER_ID and KRATOS_TOKEN)")
	}
	e.session = session.New(models.UserCompact{ID: userID}, token)
	e.client = gateway.New(
		v.GetString("api-url"),
		e.session,
		gateway.WithHTTPClient(&http.Client{Timeout: v.GetDuration("timeout")}),
		gateway.WithLogger(e.log),
	)
	e.notifier = feed.NotifierFunc(func(n feed.Notice) {
		fmt.Fprintln(e.errOut, formatNotice(n))
	})
	return nil
}

// report shows err as a notice and marks it handled
func (e *env) report(err error) error {
	if err == nil {
		return nil
	}
	e.notifier.Notify(feed.NoticeFor(err))
	return errReported
}

// Execute runs the CLI and returns the process exit code
func Execute(ctx context.Context, args []string, out, errOut io.Writer) int {
	root := NewRootCommand(out, errOut)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(errOut, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}
