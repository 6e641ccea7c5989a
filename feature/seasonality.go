package feature

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type FourierComp string

const (
	FourierCompSin FourierComp = "sin"
	FourierCompCos FourierComp = "cos"
)

// Seasonality is one sine or cosine term of a Fourier series
type Seasonality struct {
	Name        string      `json:"name"`
	FourierComp FourierComp `json:"fourier_component"`
	Order       int         `json:"order"`
}

func NewSeasonality(name string, fcomp FourierComp, order int) *Seasonality {
	return &Seasonality{name, fcomp, order}
}

func (s Seasonality) String() string {
	return fmt.Sprintf("seas_%s_%02d_%s", s.Name, s.Order, s.FourierComp)
}

// Get returns the value of a label and whether the label exists
func (s Seasonality) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return s.Name, true
	case "fourier_component":
		return string(s.FourierComp), true
	case "order":
		return strconv.Itoa(s.Order), true
	}
	return "", false
}

func (s Seasonality) Type() FeatureType {
	return FeatureTypeSeasonality
}

// Decode converts the feature into a map of label values
func (s Seasonality) Decode() map[string]string {
	return map[string]string{
		"name":              s.Name,
		"fourier_component": string(s.FourierComp),
		"order":             strconv.Itoa(s.Order),
	}
}

// UnmarshalJSON reads the label map produced by Decode
func (s *Seasonality) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Name        string      `json:"name"`
		FourierComp FourierComp `json:"fourier_component"`
		Order       string      `json:"order"`
	}
	if err := json.Unmarshal(data, &labelStr); err != nil {
		return err
	}
	order, err := strconv.Atoi(labelStr.Order)
	if err != nil {
		return err
	}
	s.Name = labelStr.Name
	s.FourierComp = labelStr.FourierComp
	s.Order = order
	return nil
}

// Fourier generates sin and cos pairs for orders 1 through orders at the given period,
// evaluated at each position of idx. The sine term of an order where 2*order equals the
// period is zero at every integer index and is left out.
func Fourier(name string, idx []float64, period float64, orders int) Set {
	set := make(Set, 2*orders)
	for order := 1; order <= orders; order++ {
		omega := 2.0 * math.Pi * float64(order) / period
		sin := make([]float64, len(idx))
		cos := make([]float64, len(idx))
		for i, x := range idx {
			rad := omega * x
			sin[i] = math.Sin(rad)
			cos[i] = math.Cos(rad)
		}
		if float64(2*order) != period {
			set.Add(NewSeasonality(name, FourierCompSin, order), sin)
		}
		set.Add(NewSeasonality(name, FourierCompCos, order), cos)
	}
	return set
}

// Index returns the positions start, start+1, ... start+n-1 as floats
func Index(start, n int) []float64 {
	idx := make([]float64, n)
	for i := range idx {
		idx[i] = float64(start + i)
	}
	return idx
}
