package pathutil

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidID is returned when the ID segment of a path is not a positive integer.
var ErrInvalidID = errors.New("invalid id")

// ExtractID strips prefix from path and parses the remainder as an int64 ID.
//
//	id, err := ExtractID("/posts/123", "/posts/") // 123, nil
func ExtractID(path, prefix string) (int64, error) {
	idStr := strings.TrimPrefix(path, prefix)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
