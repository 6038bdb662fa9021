package cli

import (
	"context"

	"github.com/anonto42/kratos-hub/backend/internal/feed"
	"github.com/anonto42/kratos-hub/backend/internal/models"
	"github.com/spf13/cobra"
)

type scopeFlags struct {
	mine   bool
	author uint
	limit  int
}

func (f *scopeFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.mine, "mine", false, "only your own posts")
	cmd.Flags().UintVar(&f.author, "author", 0, "only posts by this user ID")
	cmd.Flags().IntVar(&f.limit, "limit", feed.DefaultPageSize, "posts per page")
}

func (f *scopeFlags) scope() feed.Scope {
	if f.author != 0 {
		return feed.UserScope(f.author)
	}
	if f.mine {
		return feed.UserScope(0)
	}
	return feed.CommunityScope()
}

func newFeedCommand(e *env) *cobra.Command {
	var (
		sf       scopeFlags
		category string
		pages    int
	)
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "List community posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store := e.newStore(sf.limit)
			defer store.Close()

			if err := store.LoadFirstPage(ctx, sf.scope()); err != nil {
				return e.report(err)
			}
			for i := 1; i < pages && store.HasMore(); i++ {
				if err := store.LoadNextPage(ctx); err != nil {
					// what was loaded so far is still shown
					_ = e.report(err)
					break
				}
			}

			renderPosts(e.out, store.Visible(category))
			if store.HasMore() {
				renderMore(e.out, store.Page())
			}
			return nil
		},
	}
	sf.register(cmd)
	cmd.Flags().StringVar(&category, "category", models.CategoryAny, "workout, nutrition, progress, motivation or any")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	return cmd
}

// locate pages through the scope until postID is loaded or scan pages are used up
func locate(ctx context.Context, store *feed.Store, scope feed.Scope, postID string, scan int) (bool, error) {
	if err := store.LoadFirstPage(ctx, scope); err != nil {
		return false, err
	}
	for i := 1; ; i++ {
		if _, ok := store.Post(postID); ok {
			return true, nil
		}
		if i >= scan || !store.HasMore() {
			return false, nil
		}
		if err := store.LoadNextPage(ctx); err != nil {
			return false, err
		}
	}
}
