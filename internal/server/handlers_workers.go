package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apierrors "github.com/hanapbuhay/backend/internal/errors"
	"github.com/hanapbuhay/backend/internal/geo"
	"github.com/hanapbuhay/backend/internal/logging"
	"github.com/hanapbuhay/backend/internal/rating"
)

// handleNearbyWorkers lists workers within the service radius of the given
// origin, closest first. Origin defaults to the city center when lat/lng are
// absent, matching how unlocated workers are treated.
func (s *APIServer) handleNearbyWorkers(c *gin.Context) {
	origin := geo.Coordinate{Lat: s.config.Geo.DefaultLat, Lng: s.config.Geo.DefaultLng}
	if latStr := c.Query("lat"); latStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			respondError(c, apierrors.NewInvalidRequestError("Invalid latitude"))
			return
		}
		origin.Lat = lat
	}
	if lngStr := c.Query("lng"); lngStr != "" {
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			respondError(c, apierrors.NewInvalidRequestError("Invalid longitude"))
			return
		}
		origin.Lng = lng
	}

	roster, err := s.loadWorkerRoster(c)
	if err != nil {
		logging.LogError(err, c.GetString("request_id"), "server", "nearby_workers")
		respondError(c, apierrors.ErrPersistenceError)
		return
	}

	candidates := s.matcher.FindNearby(origin.Lat, origin.Lng, roster, c.Query("skill"), c.Query("search"))
	c.JSON(http.StatusOK, gin.H{"workers": candidates})
}

// loadWorkerRoster loads all active workers for matching
func (s *APIServer) loadWorkerRoster(c *gin.Context) ([]geo.Worker, error) {
	rows, err := s.db.Query(c.Request.Context(), `
		SELECT w.id, w.first_name || ' ' || w.last_name, w.skill, w.latitude, w.longitude
		FROM worker_profiles w
		JOIN accounts a ON a.id = w.account_id
		WHERE a.is_active = true
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roster := make([]geo.Worker, 0)
	for rows.Next() {
		var w geo.Worker
		var lat, lng *float64
		if err := rows.Scan(&w.ID, &w.Name, &w.Skill, &lat, &lng); err != nil {
			return nil, err
		}
		if lat != nil && lng != nil {
			w.Location = &geo.Coordinate{Lat: *lat, Lng: *lng}
		}
		roster = append(roster, w)
	}

	return roster, rows.Err()
}

// handleWorkerReviews lists a worker's reviews with the current aggregate
func (s *APIServer) handleWorkerReviews(c *gin.Context) {
	workerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid worker id"))
		return
	}

	reviews, average, err := s.ratingService.ListForWorker(c.Request.Context(), workerID)
	if err != nil {
		if errors.Is(err, rating.ErrWorkerNotFound) {
			respondError(c, apierrors.NewNotFoundError("Worker"))
		} else {
			logging.LogError(err, c.GetString("request_id"), "server", "worker_reviews")
			respondError(c, apierrors.ErrPersistenceError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"average_rating": average,
		"reviews":        reviews,
	})
}
