package catalog

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/topten/internal/movie"
)

var validate = newValidator()

// newValidator reports fields by their form names rather than Go names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// AddInput is the add-by-title form.
type AddInput struct {
	Title string `form:"title" validate:"required"`
}

// Validate trims the title and checks it is present.
func (in AddInput) Validate() (string, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := check(in); err != nil {
		return "", err
	}
	return in.Title, nil
}

// EditInput is the rating/review form. Rating arrives as raw text.
type EditInput struct {
	Rating string `form:"rating" validate:"required"`
	Review string `form:"review" validate:"required,max=500"`
}

// EditValues is a validated EditInput.
type EditValues struct {
	Rating float64
	Review string
}

// Validate checks required fields and coerces the rating to a float. The
// 0-10 scale shown on the form is guidance only and is not enforced.
func (in EditInput) Validate() (EditValues, error) {
	in.Rating = strings.TrimSpace(in.Rating)
	if err := check(in); err != nil {
		return EditValues{}, err
	}

	rating, err := strconv.ParseFloat(in.Rating, 64)
	if err != nil || math.IsNaN(rating) || math.IsInf(rating, 0) {
		return EditValues{}, &movie.ValidationError{Fields: map[string]string{"rating": "number"}}
	}
	return EditValues{Rating: rating, Review: in.Review}, nil
}

func check(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return &movie.ValidationError{Fields: fields}
}
