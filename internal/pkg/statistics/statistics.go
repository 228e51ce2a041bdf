package statistics

import (
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/cache"
)

const (
	CacheKeyDirectory = "lbd:statistics:directory"
	CacheExpiration   = 10 * time.Minute
)

// StatisticsData holds the counters shown on the home page and the admin dashboard
type StatisticsData struct {
	Businesses         int64 `json:"businesses"`
	Claimed            int64 `json:"claimed"`
	Areas              int   `json:"areas"`
	Categories         int   `json:"categories"`
	PendingSubmissions int64 `json:"pending_submissions"`
	PendingReviews     int64 `json:"pending_reviews"`
	Users              int64 `json:"users"`
}

// Compute counts everything straight from the database
func Compute(repos *repository.Repositories) (StatisticsData, error) {
	var (
		data StatisticsData
		err  error
	)
	if data.Businesses, err = repos.Business.Count(); err != nil {
		return data, err
	}
	if data.Claimed, err = repos.Business.CountClaimed(); err != nil {
		return data, err
	}
	areas, err := repos.Term.List(models.TAXONOMY_AREA)
	if err != nil {
		return data, err
	}
	data.Areas = len(areas)
	cats, err := repos.Term.List(models.TAXONOMY_CATEGORY)
	if err != nil {
		return data, err
	}
	data.Categories = len(cats)
	if data.PendingSubmissions, err = repos.Submission.CountByStatus(models.SUBMISSION_STATUS_PENDING); err != nil {
		return data, err
	}
	if data.PendingReviews, err = repos.Review.CountByApproved(false); err != nil {
		return data, err
	}
	if data.Users, err = repos.User.Count(); err != nil {
		return data, err
	}
	return data, nil
}

// GetStatisticsData returns cached counters, recomputing them after expiry
func GetStatisticsData(repos *repository.Repositories) StatisticsData {
	var data StatisticsData
	err := cache.GetJSON(CacheKeyDirectory, &data)
	if err == nil {
		return data
	}
	if !cache.IsMiss(err) {
		log.Warnf("[Statistics] cache read failed: %v", err)
	}

	data, err = Compute(repos)
	if err != nil {
		log.Errorf("[Statistics] failed to compute counters: %v", err)
		return data
	}
	if err := cache.SetJSON(CacheKeyDirectory, data, CacheExpiration); err != nil {
		log.Warnf("[Statistics] cache write failed: %v", err)
	}
	return data
}

// Invalidate drops the cached counters after a write
func Invalidate() {
	if err := cache.Delete(CacheKeyDirectory); err != nil {
		log.Warnf("[Statistics] cache delete failed: %v", err)
	}
}
