package httputil_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PrismLauncher/mcmeta/pkg/httputil"
)

func ExampleRetry() {
	attempts := 0
	err := httputil.Retry(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return &httputil.RetryableError{Err: errors.New("502 Bad Gateway")}
		}
		return nil
	})
	fmt.Println("attempts:", attempts, "err:", err)
	// Output:
	// attempts: 3 err: <nil>
}

func ExampleRetry_permanent() {
	attempts := 0
	err := httputil.Retry(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		return errors.New("404 Not Found")
	})
	fmt.Println("attempts:", attempts, "err:", err)
	// Output:
	// attempts: 1 err: 404 Not Found
}
