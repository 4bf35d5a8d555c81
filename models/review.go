package models

import (
	"math"
	"time"
)

// Review is a customer's rating of a professional. All four scores are 1..5.
type Review struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          uint      `json:"user_id" gorm:"not null;index"`
	User            *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	EmployeeID      uint      `json:"employee_id" gorm:"not null;index"`
	Employee        *Employee `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`
	Rate            int       `json:"rate" gorm:"not null"`
	PriceRate       int       `json:"price_rate" gorm:"not null"`
	PerformanceRate int       `json:"performance_rate" gorm:"not null"`
	ServiceRate     int       `json:"service_rate" gorm:"not null"`
	Comment         string    `json:"comment" gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Review) TableName() string {
	return "reviews"
}

// ReviewCreate carries an optional overall rate; when omitted it is derived
// from the three dimensions.
type ReviewCreate struct {
	EmployeeID      uint   `json:"employee_id" binding:"required"`
	Rate            int    `json:"rate" binding:"omitempty,min=1,max=5"`
	PriceRate       int    `json:"price_rate" binding:"required,min=1,max=5"`
	PerformanceRate int    `json:"performance_rate" binding:"required,min=1,max=5"`
	ServiceRate     int    `json:"service_rate" binding:"required,min=1,max=5"`
	Comment         string `json:"comment" binding:"max=2000"`
}

type ReviewUpdate struct {
	Rate            *int    `json:"rate" binding:"omitempty,min=1,max=5"`
	PriceRate       *int    `json:"price_rate" binding:"omitempty,min=1,max=5"`
	PerformanceRate *int    `json:"performance_rate" binding:"omitempty,min=1,max=5"`
	ServiceRate     *int    `json:"service_rate" binding:"omitempty,min=1,max=5"`
	Comment         *string `json:"comment" binding:"omitempty,max=2000"`
}

// OverallRate returns the rounded mean of the three dimensions.
func OverallRate(price, performance, service int) int {
	return int(math.Round(float64(price+performance+service) / 3))
}

// RatingAggregate holds the per-dimension means of a set of reviews.
type RatingAggregate struct {
	Rate            float64
	PriceRate       float64
	PerformanceRate float64
	ServiceRate     float64
	Count           int
}

// AggregateReviews computes the unweighted mean of each dimension.
// It returns ok=false for an empty slice.
func AggregateReviews(reviews []Review) (agg RatingAggregate, ok bool) {
	if len(reviews) == 0 {
		return agg, false
	}
	var rate, price, perf, svc int
	for _, r := range reviews {
		rate += r.Rate
		price += r.PriceRate
		perf += r.PerformanceRate
		svc += r.ServiceRate
	}
	n := float64(len(reviews))
	return RatingAggregate{
		Rate:            float64(rate) / n,
		PriceRate:       float64(price) / n,
		PerformanceRate: float64(perf) / n,
		ServiceRate:     float64(svc) / n,
		Count:           len(reviews),
	}, true
}
