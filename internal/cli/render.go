package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/anonto42/kratos-hub/backend/internal/feed"
	"github.com/anonto42/kratos-hub/backend/internal/models"
)

const captionWidth = 48

func displayName(u models.UserCompact) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return fmt.Sprintf("user #%d", u.ID)
	}
	return name
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func marks(p models.FeedPost) string {
	var m []string
	if p.IsLikedByUser {
		m = append(m, "liked")
	}
	if p.IsSavedByUser {
		m = append(m, "saved")
	}
	return strings.Join(m, ",")
}

func renderPosts(w io.Writer, posts []models.FeedPost) {
	if len(posts) == 0 {
		fmt.Fprintln(w, "No posts to show.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAUTHOR\tCATEGORY\tLIKES\tSHARES\tYOU\tCAPTION")
	for _, p := range posts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			p.ID, displayName(p.Author), p.Category, p.LikeCount, p.ShareCount, marks(p), truncate(p.Caption, captionWidth))
	}
	tw.Flush()
}

func renderMore(w io.Writer, page int) {
	fmt.Fprintf(w, "More posts available; rerun with --pages %d to load another page.\n", page+1)
}

func renderPost(w io.Writer, store *feed.Store, postID string) {
	if p, ok := store.Post(postID); ok {
		renderPosts(w, []models.FeedPost{p})
	}
}

func renderLikers(w io.Writer, likers []models.Liker) {
	if len(likers) == 0 {
		fmt.Fprintln(w, "Nobody has liked this post yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, l := range likers {
		fmt.Fprintf(tw, "%d\t%s\n", l.ID, displayName(l))
	}
	tw.Flush()
}

func formatNotice(n feed.Notice) string {
	msg := fmt.Sprintf("[%s] %s", n.Level, n.Message)
	if n.Retryable {
		msg += " (retry)"
	}
	return msg
}
