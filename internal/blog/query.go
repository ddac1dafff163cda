// Client-side filters over whole tables.

package blog

import (
	"cmp"
	"slices"

	"github.com/maruel/blogdb/internal/jsonstore"
)

// CommentsForPost returns the comments on a post ordered by id.
func CommentsForPost(comments CommentRepository, postID int) ([]*Comment, error) {
	all, err := comments.All()
	if err != nil {
		return nil, err
	}
	return filterSorted(all, func(c *Comment) bool { return c.PostID == postID }), nil
}

// PostsByUser returns the posts written by a user ordered by id.
func PostsByUser(posts PostRepository, userID int) ([]*Post, error) {
	all, err := posts.All()
	if err != nil {
		return nil, err
	}
	return filterSorted(all, func(p *Post) bool { return p.UserID == userID }), nil
}

// Usernames maps user ids to usernames.
func Usernames(users UserRepository) (map[int]string, error) {
	all, err := users.All()
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(all))
	for _, u := range all {
		names[u.ID] = u.Username
	}
	return names, nil
}

func filterSorted[T jsonstore.Row[T]](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	slices.SortStableFunc(out, func(a, b T) int { return cmp.Compare(a.GetID(), b.GetID()) })
	return out
}
