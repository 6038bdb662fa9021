package cli

import (
	"context"
	"fmt"

	"github.com/anonto42/kratos-hub/backend/internal/feed"
	"github.com/spf13/cobra"
)

type actionFunc func(ctx context.Context, e *env, m *feed.Mutator, store *feed.Store, postID string) error

func newActionCommand(e *env, name, short string, run actionFunc) *cobra.Command {
	var (
		sf   scopeFlags
		scan int
	)
	cmd := &cobra.Command{
		Use:   name + " <postId>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			postID := args[0]
			store := e.newStore(sf.limit)
			defer store.Close()

			found, err := locate(ctx, store, sf.scope(), postID, scan)
			if err != nil {
				return e.report(err)
			}
			if !found {
				e.notifier.Notify(feed.Notice{
					Level:   feed.NoticeInfo,
					Message: fmt.Sprintf("Post %s is not in the first %d pages of this feed.", postID, scan),
					PostID:  postID,
				})
				return errReported
			}

			m := feed.NewMutator(store, e.client, e.session,
				feed.WithNotifier(e.notifier),
				feed.WithMutatorLogger(e.log),
			)
			if err := run(ctx, e, m, store, postID); err != nil {
				// the mutator already surfaced the notice
				return errReported
			}
			return nil
		},
	}
	sf.register(cmd)
	cmd.Flags().IntVar(&scan, "scan", 5, "pages to search for the post")
	return cmd
}

func like(ctx context.Context, e *env, m *feed.Mutator, store *feed.Store, postID string) error {
	if err := m.ToggleLike(ctx, postID); err != nil {
		return err
	}
	renderPost(e.out, store, postID)
	return nil
}

func save(ctx context.Context, e *env, m *feed.Mutator, store *feed.Store, postID string) error {
	if err := m.ToggleSave(ctx, postID); err != nil {
		return err
	}
	renderPost(e.out, store, postID)
	return nil
}

func share(ctx context.Context, e *env, m *feed.Mutator, store *feed.Store, postID string) error {
	if err := m.Share(ctx, postID); err != nil {
		return err
	}
	renderPost(e.out, store, postID)
	return nil
}

func remove(ctx context.Context, e *env, m *feed.Mutator, _ *feed.Store, postID string) error {
	if err := m.Delete(ctx, postID); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Deleted post %s\n", postID)
	return nil
}

func newLikersCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "likers <postId>",
		Short: "Show who liked a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popup := feed.NewLikersPopup(e.client, e.notifier)
			if err := popup.Open(cmd.Context(), args[0]); err != nil {
				return errReported
			}
			renderLikers(e.out, popup.Likers())
			popup.Close()
			popup.TransitionEnd()
			return nil
		},
	}
}
