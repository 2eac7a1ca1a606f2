package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("PRAXIS_TEST_MODE") == "" {
			_ = os.Setenv("PRAXIS_TEST_MODE", "1")
		}
	})
}
