package healthcheck_test

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ashimangshu/Load-Balancer/internal/backend"
	"github.com/ashimangshu/Load-Balancer/internal/healthcheck"
	"github.com/ashimangshu/Load-Balancer/internal/status"
)

func TestHealthcheck(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Healthcheck Suite")
}

// hostPort splits a test server URL's host into backend identity parts.
func hostPort(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	Expect(err).NotTo(HaveOccurred())
	port, err := strconv.Atoi(portStr)
	Expect(err).NotTo(HaveOccurred())
	return host, port
}

var _ = Describe("Checker", func() {
	var (
		log        *slog.Logger
		statusPath string
	)

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stdout, nil))
		statusPath = filepath.Join(GinkgoT().TempDir(), "status.txt")
	})

	newChecker := func(reg *backend.Registry) *healthcheck.Checker {
		return healthcheck.NewChecker(reg, status.NewWriter(statusPath),
			50*time.Millisecond, 500*time.Millisecond, log)
	}

	Context("with a backend answering 200 on /health", func() {
		var (
			srv *httptest.Server
			reg *backend.Registry
		)

		BeforeEach(func() {
			srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/health" {
					w.WriteHeader(http.StatusOK)
					w.Write([]byte("OK"))
					return
				}
				w.WriteHeader(http.StatusNotFound)
			}))

			host, port := hostPort(srv.Listener.Addr().String())
			reg = backend.NewRegistry([]backend.Backend{{Host: host, Port: port}})
			reg.SetHealthy(0, false)
		})

		AfterEach(func() {
			srv.Close()
		})

		It("should mark the backend healthy", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			done := make(chan struct{})
			go func() {
				defer close(done)
				newChecker(reg).Run(ctx)
			}()

			Eventually(func() bool {
				return reg.IsHealthy(0)
			}, time.Second, 10*time.Millisecond).Should(BeTrue())

			cancel()
			Eventually(done, time.Second).Should(BeClosed())
		})

		It("should persist the status snapshot after a cycle", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go newChecker(reg).Run(ctx)

			Eventually(func() string {
				data, _ := os.ReadFile(statusPath)
				return string(data)
			}, time.Second, 10*time.Millisecond).Should(ContainSubstring("Health Status:"))

			data, err := os.ReadFile(statusPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("[healthy]"))
		})
	})

	Context("with a backend answering non-200 on /health", func() {
		var (
			srv *httptest.Server
			reg *backend.Registry
		)

		BeforeEach(func() {
			srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))

			host, port := hostPort(srv.Listener.Addr().String())
			reg = backend.NewRegistry([]backend.Backend{{Host: host, Port: port}})
		})

		AfterEach(func() {
			srv.Close()
		})

		It("should mark the backend unhealthy", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go newChecker(reg).Run(ctx)

			Eventually(func() bool {
				return reg.IsHealthy(0)
			}, time.Second, 10*time.Millisecond).Should(BeFalse())
		})
	})

	Context("with an unreachable backend", func() {
		It("should mark the backend unhealthy without affecting others", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer srv.Close()

			host, port := hostPort(srv.Listener.Addr().String())

			// A closed listener's port gives a fast connection refused.
			dead, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())
			deadHost, deadPort := hostPort(dead.Addr().String())
			dead.Close()

			reg := backend.NewRegistry([]backend.Backend{
				{Host: deadHost, Port: deadPort},
				{Host: host, Port: port},
			})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go newChecker(reg).Run(ctx)

			Eventually(func() []int {
				return reg.HealthyIndices()
			}, time.Second, 10*time.Millisecond).Should(Equal([]int{1}))
		})
	})

	Context("on shutdown", func() {
		It("should stop before the next cycle", func() {
			reg := backend.NewRegistry([]backend.Backend{{Host: "127.0.0.1", Port: 1}})

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				defer close(done)
				newChecker(reg).Run(ctx)
			}()

			cancel()
			Eventually(done, time.Second).Should(BeClosed())
		})
	})
})
