package comments

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Repository interface {
	Add(authorId int64, target Target, data AddCommentData) (*Comment, error)
	ListFor(target Target) ([]Comment, error)
	CastVote(commentId, voterId int64, direction Direction) (VoteTally, error)
	Delete(commentId, requesterId int64) error
}

type commentRepository struct {
	Connection *sql.DB
}

var (
	ErrNotFound = errors.New("comment or target not found")
	ErrSelfVote = errors.New("voting on one's own comment")
	ErrNotOwner = errors.New("comment belongs to another user")
)

func NewRepository(connection *sql.DB) Repository {
	return &commentRepository{connection}
}

// Add attaches a comment to its single target entity, with counters at zero.
// The INSERT..SELECT only produces a row when the target exists, which doubles
// as the not-found check.
func (cr *commentRepository) Add(authorId int64, target Target, data AddCommentData) (*Comment, error) {

	var now = time.Now()

	// the column and table names come from a closed set of target kinds,
	// never from user input
	result, err := cr.Connection.Exec(fmt.Sprintf(`
		INSERT INTO comments (text, user_id, %s, created)
		SELECT ?, ?, id, ? FROM %s WHERE id = ?`, target.column(), target.table()),
		data.Text, authorId, now, target.Id)
	if err != nil {
		return nil, err
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if inserted == 0 {
		return nil, ErrNotFound
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &Comment{
		Id:       id,
		Text:     data.Text,
		AuthorId: authorId,
		Created:  now,
	}, nil
}

// ListFor returns a target entity's comments with their authors, newest first.
func (cr *commentRepository) ListFor(target Target) ([]Comment, error) {

	// always return a collection, no matter whether the target exists
	var comments = make([]Comment, 0)

	rows, err := cr.Connection.Query(fmt.Sprintf(`
		SELECT comments.id, text, user_id, username, upvotes, downvotes, comments.created
		FROM comments JOIN users ON comments.user_id = users.id
		WHERE %s = ?
		ORDER BY comments.created DESC`, target.column()),
		target.Id)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var comment Comment
		if err = rows.Scan(&comment.Id, &comment.Text, &comment.AuthorId, &comment.AuthorName,
			&comment.Upvotes, &comment.Downvotes, &comment.Created); err != nil {
			return comments, err
		}
		comments = append(comments, comment)
	}

	if err = rows.Err(); err != nil {
		return comments, err
	}
	if err = rows.Close(); err != nil {
		return comments, err
	}

	return comments, nil
}

/*
CastVote applies one voter's up or down vote to a comment:

  - no prior vote: record it and increment the matching counter
  - a prior vote in the same direction: un-vote, removing the record and
    decrementing the counter
  - a prior vote in the opposite direction: flip the record and move both
    counters

The read-decide-write sequence runs in a single immediate transaction, so
concurrent votes on the same comment serialise and the counters always match
the votes table.
*/
func (cr *commentRepository) CastVote(commentId, voterId int64, direction Direction) (tally VoteTally, err error) {

	tx, err := cr.Connection.Begin()
	if err != nil {
		return tally, err
	}

	// rolling back after a commit is a safe NOP
	defer func() { _ = tx.Rollback() }()

	var authorId int64
	if err = tx.QueryRow("SELECT user_id FROM comments WHERE id = ?", commentId).Scan(&authorId); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tally, ErrNotFound
		}
		return tally, err
	}

	if authorId == voterId {
		return tally, ErrSelfVote
	}

	var upvote = direction == Up

	var existing bool
	err = tx.QueryRow(
		"SELECT vote FROM comment_votes WHERE comment_id = ? AND user_id = ?",
		commentId, voterId).Scan(&existing)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		// first vote
		if _, err = tx.Exec(
			"INSERT INTO comment_votes (comment_id, user_id, vote) VALUES (?, ?, ?)",
			commentId, voterId, upvote); err != nil {
			return tally, err
		}
		err = adjustCounters(tx, commentId, delta(upvote, 1), delta(!upvote, 1))

	case err != nil:
		return tally, err

	case existing == upvote:
		// repeat vote in the same direction toggles it off
		if _, err = tx.Exec(
			"DELETE FROM comment_votes WHERE comment_id = ? AND user_id = ?",
			commentId, voterId); err != nil {
			return tally, err
		}
		err = adjustCounters(tx, commentId, delta(upvote, -1), delta(!upvote, -1))

	default:
		// opposite direction flips the vote, moving the differential by two
		if _, err = tx.Exec(
			"UPDATE comment_votes SET vote = ? WHERE comment_id = ? AND user_id = ?",
			upvote, commentId, voterId); err != nil {
			return tally, err
		}
		if upvote {
			err = adjustCounters(tx, commentId, 1, -1)
		} else {
			err = adjustCounters(tx, commentId, -1, 1)
		}
	}

	if err != nil {
		return tally, err
	}

	tally.CommentId = commentId
	if err = tx.QueryRow(
		"SELECT upvotes, downvotes FROM comments WHERE id = ?",
		commentId).Scan(&tally.Upvotes, &tally.Downvotes); err != nil {
		return tally, err
	}

	return tally, tx.Commit()
}

func adjustCounters(tx *sql.Tx, commentId int64, up, down int) error {
	_, err := tx.Exec(
		"UPDATE comments SET upvotes = upvotes + ?, downvotes = downvotes + ? WHERE id = ?",
		up, down, commentId)
	return err
}

func delta(matches bool, amount int) int {
	if matches {
		return amount
	}
	return 0
}

// Delete removes a comment when the requester authored it; the votes cascade
// away with the row.
func (cr *commentRepository) Delete(commentId, requesterId int64) error {
	result, err := cr.Connection.Exec(
		"DELETE FROM comments WHERE id = ? AND user_id = ?", commentId, requesterId)
	if err != nil {
		return err
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 1 {
		return nil
	}

	// distinguish a missing comment from somebody else's
	var exists bool
	if err = cr.Connection.QueryRow(
		"SELECT TRUE FROM comments WHERE id = ?", commentId).Scan(&exists); err == nil && exists {
		return ErrNotOwner
	}
	return ErrNotFound
}
