package server

import (
	"fmt"
	"net"
	"os/exec"
	"runtime"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// FindAvailablePort finds an available port starting from startPort
func FindAvailablePort(startPort int) int {
	for port := startPort; port < startPort+100; port++ {
		if isPortAvailable(port) {
			return port
		}
	}
	return startPort
}

func isPortAvailable(port int) bool {
	ln, err := net.Listen("tcp4", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	ln.Close()
	return true
}

// OpenBrowser opens the default browser with the given URL
func OpenBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	case "darwin":
		cmd = "open"
		args = []string{url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	return exec.Command(cmd, args...).Start()
}

// queryParams collects the query string into a raw params map. Repeated keys and
// "key[]" forms become lists.
func queryParams(c *fiber.Ctx) map[string]any {
	raw := make(map[string]any)
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		k := strings.TrimSuffix(string(key), "[]")
		v := string(value)
		switch prev := raw[k].(type) {
		case nil:
			raw[k] = v
		case string:
			raw[k] = []any{prev, v}
		case []any:
			raw[k] = append(prev, v)
		}
	})
	return raw
}
