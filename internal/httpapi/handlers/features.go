package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yungbote/housing-predictor/internal/housing"
	"github.com/yungbote/housing-predictor/internal/httpapi/response"
)

// HouseFeatures is the request body of /predict. Ranges are checked here,
// at the boundary; the pipeline itself accepts any finite value.
type HouseFeatures struct {
	MedInc     *float64 `json:"MedInc" binding:"required,gte=0"`
	HouseAge   *float64 `json:"HouseAge" binding:"required,gte=0,lte=100"`
	AveRooms   *float64 `json:"AveRooms" binding:"required,gte=0"`
	AveBedrms  *float64 `json:"AveBedrms" binding:"required,gte=0"`
	Population *float64 `json:"Population" binding:"required,gte=0"`
	AveOccup   *float64 `json:"AveOccup" binding:"required,gte=0"`
	Latitude   *float64 `json:"Latitude" binding:"required,gte=32,lte=42"`
	Longitude  *float64 `json:"Longitude" binding:"required,gte=-125,lte=-114"`
}

func (h HouseFeatures) Record() housing.Record {
	return housing.Record{
		housing.MedInc:     *h.MedInc,
		housing.HouseAge:   *h.HouseAge,
		housing.AveRooms:   *h.AveRooms,
		housing.AveBedrms:  *h.AveBedrms,
		housing.Population: *h.Population,
		housing.AveOccup:   *h.AveOccup,
		housing.Latitude:   *h.Latitude,
		housing.Longitude:  *h.Longitude,
	}
}

// bindJSON decodes and validates the body, turning binding failures into 422
// (or 413 for oversized bodies) with the offending field in param.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return response.New(http.StatusRequestEntityTooLarge, "body_too_large", "", err)
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return response.New(http.StatusUnprocessableEntity, "validation_error", fe.Field(),
			fmt.Errorf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
	}
	return response.New(http.StatusUnprocessableEntity, "invalid_body", "", err)
}
