// Package guard flips the runtime into test mode as a side effect of being
// imported; tests import it blank to keep main() inert.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("VERITRACT_TEST_MODE") == "" {
			_ = os.Setenv("VERITRACT_TEST_MODE", "1")
		}
	})
}
