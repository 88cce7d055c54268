package repository

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// IsNotFound reports whether err is a Firestore "no such document" error.
func IsNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
