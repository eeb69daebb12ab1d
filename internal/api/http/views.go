package httpapi

import (
	"strconv"

	"github.com/i474232898/climate-station-map/internal/stations"
)

type instrumentView struct {
	Name     string `json:"name"`
	Color    string `json:"color"`
	Stations int    `json:"stations"`
	Dropped  int    `json:"dropped"`
	HasMap   bool   `json:"hasMap"`
}

type mapView struct {
	Instrument string `json:"instrument"`
	Available  bool   `json:"available"`
	FileName   string `json:"fileName,omitempty"`
	Size       int64  `json:"size,omitempty"`
	URL        string `json:"url,omitempty"`
	Message    string `json:"message,omitempty"`
}

type popupView struct {
	Station    string `json:"station"`
	Province   string `json:"province"`
	City       string `json:"city"`
	Instrument string `json:"instrument"`
	Status     string `json:"status"`
}

type markerView struct {
	ID        string    `json:"id"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	Color     string    `json:"color"`
	Popup     popupView `json:"popup"`
}

type clusterView struct {
	Name    string       `json:"name"`
	Count   int          `json:"count"`
	Markers []markerView `json:"markers"`
}

func toMarker(r stations.StationRecord) markerView {
	return markerView{
		ID:        r.Instrument + ":" + strconv.Itoa(r.Row),
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Color:     r.Color,
		Popup: popupView{
			Station:    r.Name,
			Province:   r.Province,
			City:       r.City,
			Instrument: r.Instrument,
			Status:     r.Status,
		},
	}
}

func toClusterView(cl stations.ProvinceCluster) clusterView {
	markers := make([]markerView, 0, len(cl.Records))
	for _, r := range cl.Records {
		markers = append(markers, toMarker(r))
	}
	return clusterView{Name: cl.Province, Count: len(markers), Markers: markers}
}

// GeoJSON output. Coordinates are [longitude, latitude].

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string          `json:"type"`
	Geometry   pointGeometry   `json:"geometry"`
	Properties featureProperty `json:"properties"`
}

type pointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type featureProperty struct {
	Name       string `json:"name"`
	Province   string `json:"province"`
	City       string `json:"city"`
	Instrument string `json:"instrument"`
	Status     string `json:"status"`
	Color      string `json:"color"`
	Geohash    string `json:"geohash"`
}

func toFeatureCollection(ws stations.WorkingSet) featureCollection {
	fc := featureCollection{Type: "FeatureCollection", Features: make([]feature, 0, ws.Len())}
	for _, r := range ws.Records {
		fc.Features = append(fc.Features, feature{
			Type: "Feature",
			Geometry: pointGeometry{
				Type:        "Point",
				Coordinates: [2]float64{r.Longitude, r.Latitude},
			},
			Properties: featureProperty{
				Name:       r.Name,
				Province:   r.Province,
				City:       r.City,
				Instrument: r.Instrument,
				Status:     r.Status,
				Color:      r.Color,
				Geohash:    r.Geohash,
			},
		})
	}
	return fc
}
