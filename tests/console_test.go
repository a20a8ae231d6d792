package console_test

import (
	"context"
	"net/http"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	gridcache "github.com/nrfta/gridcache-go"
	"github.com/nrfta/gridcache-go/console/models"
	"github.com/nrfta/gridcache-go/httpfetch"
	"github.com/nrfta/gridcache-go/optimistic"
	"github.com/nrfta/gridcache-go/session"
	"github.com/nrfta/gridcache-go/store"
)

func transportFor(token string) *httpfetch.Transport {
	opts := []httpfetch.TransportOption{}
	if token != "" {
		opts = append(opts, httpfetch.WithTokenSource(gridcache.StaticToken(token)))
	}
	return httpfetch.NewTransport(baseURL, opts...)
}

func resourceClient(token string, filter url.Values) *httpfetch.PageClient[models.Resource] {
	return httpfetch.NewPageClient[models.Resource](
		transportFor(token), "list resources", "/api/v1/resources", filter)
}

var _ = Describe("console API", Ordered, func() {
	It("serves the health endpoint without credentials", func() {
		resp, err := http.Get(baseURL + "/healthz")
		Expect(err).ToNot(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})

	It("rejects API calls without a credential", func() {
		_, err := resourceClient("", nil).FetchPage(ctx, nil, 10)
		Expect(err).To(HaveOccurred())

		te := err.(*gridcache.TransportError)
		Expect(te.Status).To(Equal(http.StatusUnauthorized))
	})

	It("rejects API calls with an unknown credential", func() {
		_, err := resourceClient("bogus-token", nil).FetchPage(ctx, nil, 10)
		Expect(err).To(HaveOccurred())

		te := err.(*gridcache.TransportError)
		Expect(te.Status).To(Equal(http.StatusUnauthorized))
	})

	Describe("cursor pagination", func() {
		It("pages the resource list to exhaustion without gaps or duplicates", func() {
			cache := store.New[models.Resource](gridcache.Config{})
			ctrl := session.New(
				gridcache.NewListKey("resources", nil),
				resourceClient("viewer-token", nil),
				cache,
				gridcache.Config{PageSize: 10, RetryCount: -1},
			)

			for ctrl.HasMore() {
				Expect(ctrl.LoadNextPage(ctx)).To(Succeed())
			}

			items := ctrl.Items()
			Expect(items).To(HaveLen(seededResources))
			Expect(ctrl.TotalCount()).To(Equal(seededResources))

			seen := map[string]bool{}
			for i, r := range items {
				Expect(seen[r.ID.String()]).To(BeFalse(), "duplicate row %s", r.ID)
				seen[r.ID.String()] = true

				if i > 0 {
					Expect(items[i].CreatedAt.After(items[i-1].CreatedAt)).To(BeFalse(),
						"default sort must be created_at descending")
				}
			}
		})

		It("keeps filtered sequences independent", func() {
			cache := store.New[models.Resource](gridcache.Config{})

			activeKey := gridcache.NewListKey("resources", map[string]string{"status": models.StatusActive})
			idleKey := gridcache.NewListKey("resources", map[string]string{"status": models.StatusIdle})

			activeCtrl := session.New(activeKey,
				resourceClient("viewer-token", url.Values{"status": {models.StatusActive}}),
				cache, gridcache.Config{PageSize: 10, RetryCount: -1})
			idleCtrl := session.New(idleKey,
				resourceClient("viewer-token", url.Values{"status": {models.StatusIdle}}),
				cache, gridcache.Config{PageSize: 10, RetryCount: -1})

			for activeCtrl.HasMore() {
				Expect(activeCtrl.LoadNextPage(ctx)).To(Succeed())
			}
			idleBefore := idleCtrl.Items()

			for idleCtrl.HasMore() {
				Expect(idleCtrl.LoadNextPage(ctx)).To(Succeed())
			}

			Expect(idleBefore).To(BeEmpty(), "loading one sequence must not touch another")
			for _, r := range activeCtrl.Items() {
				Expect(r.Status).To(Equal(models.StatusActive))
			}
			for _, r := range idleCtrl.Items() {
				Expect(r.Status).To(Equal(models.StatusIdle))
			}
			Expect(len(activeCtrl.Items()) + len(idleCtrl.Items())).To(BeNumerically("<=", seededResources))
		})

		It("serves the first page for a corrupted cursor", func() {
			client := resourceClient("viewer-token", nil)

			first, err := client.FetchPage(ctx, nil, 5)
			Expect(err).ToNot(HaveOccurred())

			garbage := "not-a-cursor%%%"
			degraded, err := client.FetchPage(ctx, &garbage, 5)
			Expect(err).ToNot(HaveOccurred())

			Expect(degraded.Items[0].ID).To(Equal(first.Items[0].ID))
		})

		It("sorts by name ascending with a stable tiebreaker", func() {
			client := resourceClient("viewer-token", url.Values{"sort": {"name"}, "order": {"asc"}})

			var names []string
			var cursor *string
			for {
				page, err := client.FetchPage(ctx, cursor, 20)
				Expect(err).ToNot(HaveOccurred())
				for _, r := range page.Items {
					names = append(names, r.Name)
				}
				if !page.HasMore {
					break
				}
				cursor = page.NextCursor
			}

			Expect(names).To(HaveLen(seededResources))
			for i := 1; i < len(names); i++ {
				Expect(names[i] >= names[i-1]).To(BeTrue(), "names must be non-decreasing")
			}
		})

		It("rejects an unknown sort column", func() {
			client := resourceClient("viewer-token", url.Values{"sort": {"password"}})
			_, err := client.FetchPage(ctx, nil, 10)

			te := err.(*gridcache.TransportError)
			Expect(te.Status).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("mutations", func() {
		It("refuses a status change from a viewer", func() {
			var target models.Resource
			Expect(container.DB.First(&target).Error).To(Succeed())

			_, err := httpfetch.Call[models.Resource](ctx, transportFor("viewer-token"),
				"update status", http.MethodPatch,
				"/api/v1/resources/"+target.ID.String()+"/status",
				map[string]string{"status": models.StatusMaintenance})

			te := err.(*gridcache.TransportError)
			Expect(te.Status).To(Equal(http.StatusForbidden))
		})

		It("validates a create payload field by field", func() {
			_, err := httpfetch.Call[models.Resource](ctx, transportFor("operator-token"),
				"create resource", http.MethodPost, "/api/v1/resources",
				map[string]any{"name": "", "category": "QUANTUM"})

			te := err.(*gridcache.TransportError)
			Expect(te.Status).To(Equal(http.StatusUnprocessableEntity))
			Expect(te.Message).To(ContainSubstring("category"))
			Expect(te.Message).To(ContainSubstring("name"))
		})

		It("creates a resource and serves it back by id", func() {
			created, err := httpfetch.Call[models.Resource](ctx, transportFor("operator-token"),
				"create resource", http.MethodPost, "/api/v1/resources",
				map[string]any{
					"name":        "suite-probe-01",
					"category":    models.CategoryCompute,
					"department":  "PLATFORM",
					"provider":    "AWS",
					"region":      "us-east-1",
					"costPerHour": 2.5,
					"tags":        []string{"suite"},
				})
			Expect(err).ToNot(HaveOccurred())
			Expect(created.Status).To(Equal(models.StatusActive), "status defaults to ACTIVE")

			fetched, err := httpfetch.Call[models.Resource](ctx, transportFor("viewer-token"),
				"get resource", http.MethodGet, "/api/v1/resources/"+created.ID.String(), nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(fetched.Name).To(Equal("suite-probe-01"))
		})

		It("applies a status change optimistically and reconciles with the server", func() {
			cache := store.New[models.Resource](gridcache.Config{})
			key := gridcache.NewListKey("resources", nil)
			ctrl := session.New(key, resourceClient("operator-token", nil), cache,
				gridcache.Config{PageSize: 10, RetryCount: -1})
			Expect(ctrl.LoadNextPage(ctx)).To(Succeed())

			target := ctrl.Items()[0]
			coord := optimistic.New(cache, gridcache.Config{})

			result, err := coord.Mutate(ctx, gridcache.MatchLists("resources"),
				func(r models.Resource) (models.Resource, bool) {
					if r.ID != target.ID {
						return r, false
					}
					r.Status = models.StatusMaintenance
					return r, true
				},
				func(callCtx context.Context) (*models.Resource, error) {
					return httpfetch.Call[models.Resource](callCtx, transportFor("operator-token"),
						"update status", http.MethodPatch,
						"/api/v1/resources/"+target.ID.String()+"/status",
						map[string]string{"status": models.StatusMaintenance})
				})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(models.StatusMaintenance))
			Expect(result.LastHealthCheckAt.Valid).To(BeTrue())

			Expect(ctrl.Items()[0].Status).To(Equal(models.StatusMaintenance))
			Expect(cache.NeedsRevalidation(key)).To(BeTrue(), "mutation must mark the scope for reconciliation")

			fetched, err := httpfetch.Call[models.Resource](ctx, transportFor("viewer-token"),
				"get resource", http.MethodGet, "/api/v1/resources/"+target.ID.String(), nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(fetched.Status).To(Equal(models.StatusMaintenance))
		})

		It("rolls the cache back when the server rejects the mutation", func() {
			cache := store.New[models.Resource](gridcache.Config{})
			key := gridcache.NewListKey("resources", nil)
			ctrl := session.New(key, resourceClient("operator-token", nil), cache,
				gridcache.Config{PageSize: 10, RetryCount: -1})
			Expect(ctrl.LoadNextPage(ctx)).To(Succeed())

			before := ctrl.Items()
			target := before[0]
			coord := optimistic.New(cache, gridcache.Config{})

			_, err := coord.Mutate(ctx, gridcache.MatchLists("resources"),
				func(r models.Resource) (models.Resource, bool) {
					if r.ID != target.ID {
						return r, false
					}
					r.Status = models.StatusDecommissioned
					return r, true
				},
				func(callCtx context.Context) (*models.Resource, error) {
					// unknown status is rejected server-side with 422
					return httpfetch.Call[models.Resource](callCtx, transportFor("operator-token"),
						"update status", http.MethodPatch,
						"/api/v1/resources/"+target.ID.String()+"/status",
						map[string]string{"status": "BROKEN"})
				})

			Expect(err).To(HaveOccurred())
			te := err.(*gridcache.TransportError)
			Expect(te.Status).To(Equal(http.StatusUnprocessableEntity))

			Expect(ctrl.Items()).To(Equal(before), "rejected mutation must leave no trace")
			Expect(cache.NeedsRevalidation(key)).To(BeFalse())
		})
	})

	Describe("access requests", func() {
		var requestID string

		It("opens a request against an existing resource", func() {
			var requester models.TeamMember
			Expect(container.DB.First(&requester).Error).To(Succeed())
			var target models.Resource
			Expect(container.DB.First(&target).Error).To(Succeed())

			created, err := httpfetch.Call[models.AccessRequest](ctx, transportFor("viewer-token"),
				"request access", http.MethodPost, "/api/v1/access-requests",
				map[string]string{
					"requesterId": requester.ID.String(),
					"resourceId":  target.ID.String(),
					"reason":      "on-call investigation",
				})
			Expect(err).ToNot(HaveOccurred())
			Expect(created.Status).To(Equal(models.RequestPending))

			requestID = created.ID.String()
		})

		It("lets only an admin decide", func() {
			_, err := httpfetch.Call[models.AccessRequest](ctx, transportFor("operator-token"),
				"decide request", http.MethodPost,
				"/api/v1/access-requests/"+requestID+"/decide",
				map[string]any{"approve": true, "decidedBy": "suite-operator"})

			te := err.(*gridcache.TransportError)
			Expect(te.Status).To(Equal(http.StatusForbidden))
		})

		It("settles a pending request exactly once", func() {
			decided, err := httpfetch.Call[models.AccessRequest](ctx, transportFor("admin-token"),
				"decide request", http.MethodPost,
				"/api/v1/access-requests/"+requestID+"/decide",
				map[string]any{"approve": true, "decidedBy": "suite-admin"})
			Expect(err).ToNot(HaveOccurred())
			Expect(decided.Status).To(Equal(models.RequestApproved))
			Expect(decided.DecidedAt.Valid).To(BeTrue())

			_, err = httpfetch.Call[models.AccessRequest](ctx, transportFor("admin-token"),
				"decide request", http.MethodPost,
				"/api/v1/access-requests/"+requestID+"/decide",
				map[string]any{"approve": false, "decidedBy": "suite-admin"})

			te := err.(*gridcache.TransportError)
			Expect(te.Status).To(Equal(http.StatusConflict))
			Expect(te.Message).To(ContainSubstring("already decided"))
		})
	})
})
