package implementation

import (
	"errors"

	"mentor-ai-be/internal/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgForeignKeyViolation = "23503"

// classifyWriteError turns a foreign key violation into NotFound: the parent
// row disappeared between the ownership check and the insert.
func classifyWriteError(err error, notFoundMessage string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return &apperror.AppError{Kind: apperror.KindNotFound, Message: notFoundMessage, Err: err}
	}
	return err
}
