package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/iho/adledger/internal/domain"
	"github.com/iho/adledger/internal/infrastructure/device"
	"github.com/iho/adledger/internal/infrastructure/metrics"
	"github.com/iho/adledger/internal/infrastructure/worker"
)

// AdGetter loads the ad a view points at.
type AdGetter interface {
	GetAd(ctx context.Context, id string) (*domain.Ad, error)
}

// Enqueuer hands a view off for asynchronous settlement.
type Enqueuer interface {
	Enqueue(job worker.Job) bool
}

// ViewHandler is the view gateway: it resolves the device, redirects
// the browser to the ad's target immediately and leaves the billing
// decision to the settlement workers. The redirect never waits on the
// database write path.
type ViewHandler struct {
	adUC       AdGetter
	resolver   *device.Resolver
	dispatcher Enqueuer
	metrics    *metrics.Metrics
	fallback   string
}

// NewViewHandler creates a new ViewHandler.
func NewViewHandler(adUC AdGetter, resolver *device.Resolver, dispatcher Enqueuer, m *metrics.Metrics, fallbackURL string) *ViewHandler {
	return &ViewHandler{
		adUC:       adUC,
		resolver:   resolver,
		dispatcher: dispatcher,
		metrics:    m,
		fallback:   fallbackURL,
	}
}

// Redirect handles GET /view/{adID}/{viewerID}.
func (h *ViewHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	adID := chi.URLParam(r, "adID")
	viewerID := chi.URLParam(r, "viewerID")
	if adID == "" || viewerID == "" {
		writeError(w, http.StatusBadRequest, "missing ad or viewer ID", "")
		return
	}

	deviceID, _ := h.resolver.Resolve(r)
	h.resolver.IssueCookie(w, deviceID)

	ad, err := h.adUC.GetAd(r.Context(), adID)
	if err != nil {
		// Unknown ad still gets a redirect; nobody is billed. A store
		// failure takes the same path for the viewer but is logged,
		// since it silently drops a potentially billable view.
		if !errors.Is(err, domain.ErrAdNotFound) {
			log.Error().Err(err).
				Str("ad_id", adID).
				Str("viewer_id", viewerID).
				Msg("ad lookup failed, redirecting to fallback")
		}
		if h.metrics != nil {
			h.metrics.ViewRedirects.WithLabelValues("fallback").Inc()
		}
		http.Redirect(w, r, h.fallback, http.StatusFound)

		return
	}

	h.dispatcher.Enqueue(worker.Job{
		AdID:     adID,
		ViewerID: viewerID,
		DeviceID: deviceID,
	})

	if h.metrics != nil {
		h.metrics.ViewRedirects.WithLabelValues("ad").Inc()
	}
	http.Redirect(w, r, ad.TargetLink, http.StatusFound)
}
