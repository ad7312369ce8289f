package pathutil_test

import (
	"fmt"

	"campaign-relay/internal/handler/http/pathutil"
)

func ExampleNormalizePath() {
	fmt.Println(pathutil.NormalizePath("/posts/123"))
	fmt.Println(pathutil.NormalizePath("/campaigns/456/posts"))
	fmt.Println(pathutil.NormalizePath("/posts/search"))
	// Output:
	// /posts/:id
	// /campaigns/:id/posts
	// /posts/search
}

func ExampleExtractID() {
	id, err := pathutil.ExtractID("/posts/123", "/posts/")
	fmt.Println(id, err)
	// Output: 123 <nil>
}
