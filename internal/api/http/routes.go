package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/climate-station-map/internal/assets"
	"github.com/i474232898/climate-station-map/internal/common"
	"github.com/i474232898/climate-station-map/internal/stations"
)

var validate = validator.New()

// DatasetSource provides the loaded station collection.
type DatasetSource interface {
	Get(ctx context.Context) (*stations.DatasetCollection, error)
	Reload(ctx context.Context) (*stations.DatasetCollection, error)
}

// MapStore provides the pre-rendered PDF maps.
type MapStore interface {
	Lookup(instrument string) (assets.Asset, error)
	Open(instrument string) (io.ReadCloser, assets.Asset, error)
}

const (
	msgNoStations = "no valid station data for the selected instruments"
	msgNoData     = "no data"
)

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, source DatasetSource, maps MapStore) {
	v1 := app.Group("/api/v1")

	v1.Get("/instruments", func(c *fiber.Ctx) error {
		coll, err := collection(c, source)
		if err != nil {
			return err
		}

		items := make([]instrumentView, 0, len(coll.Datasets))
		for _, name := range coll.Names() {
			ds, _ := coll.Dataset(name)
			_, lookupErr := maps.Lookup(name)
			items = append(items, instrumentView{
				Name:     ds.Name,
				Color:    ds.Color,
				Stations: len(ds.Records),
				Dropped:  ds.Dropped,
				HasMap:   lookupErr == nil,
			})
		}

		return c.JSON(fiber.Map{
			"generation":  coll.Generation,
			"loadedAt":    coll.LoadedAt,
			"all":         stations.AllInstruments,
			"instruments": items,
			"skipped":     coll.Skipped,
		})
	})

	v1.Get("/stations", func(c *fiber.Ctx) error {
		ws, err := workingSet(c, source)
		if err != nil {
			return err
		}

		resp := fiber.Map{
			"instruments": ws.Instruments,
			"unknown":     ws.Unknown,
			"count":       ws.Len(),
			"stations":    ws.Records,
		}
		if ws.Empty() {
			resp["message"] = msgNoStations
		}
		return c.JSON(resp)
	})

	v1.Get("/stations/geojson", func(c *fiber.Ctx) error {
		ws, err := workingSet(c, source)
		if err != nil {
			return err
		}
		if err := c.JSON(toFeatureCollection(ws)); err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return nil
	})

	v1.Get("/clusters", func(c *fiber.Ctx) error {
		ws, err := workingSet(c, source)
		if err != nil {
			return err
		}

		clusters := stations.GroupByProvince(ws)
		views := make([]clusterView, 0, len(clusters))
		for _, cl := range clusters {
			views = append(views, toClusterView(cl))
		}

		resp := fiber.Map{
			"instruments": ws.Instruments,
			"unknown":     ws.Unknown,
			"count":       ws.Len(),
			"clusters":    views,
		}
		if name, ok := ws.SingleInstrument(); ok {
			resp["map"] = mapAvailability(maps, name)
		}
		if ws.Empty() {
			resp["message"] = msgNoStations
		}
		return c.JSON(resp)
	})

	v1.Get("/summary", func(c *fiber.Ctx) error {
		ws, err := workingSet(c, source)
		if err != nil {
			return err
		}

		rows, ok := stations.Summarize(ws)
		if !ok {
			return c.JSON(fiber.Map{
				"instruments": ws.Instruments,
				"rows":        []stations.SummaryRow{},
				"total":       0,
				"message":     msgNoData,
			})
		}
		return c.JSON(fiber.Map{
			"instruments": ws.Instruments,
			"rows":        rows,
			"total":       stations.Total(rows),
		})
	})

	v1.Get("/maps/:instrument", func(c *fiber.Ctx) error {
		name, err := instrumentParam(c)
		if err != nil {
			return err
		}
		return c.JSON(mapAvailability(maps, name))
	})

	v1.Get("/maps/:instrument/pdf", func(c *fiber.Ctx) error {
		name, err := instrumentParam(c)
		if err != nil {
			return err
		}

		rc, asset, err := maps.Open(name)
		if err != nil {
			if errors.Is(err, assets.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(mapAvailability(maps, name))
			}
			log.Printf("ERROR: failed to open map for %s: %v", name, err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to open map document")
		}

		c.Attachment(asset.FileName)
		c.Set(fiber.HeaderContentType, assets.ContentType)
		return c.SendStream(rc, int(asset.Size))
	})

	v1.Post("/reload", func(c *fiber.Ctx) error {
		coll, err := source.Reload(c.UserContext())
		if err != nil {
			log.Printf("ERROR: reload failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to reload station data")
		}
		return c.JSON(fiber.Map{
			"generation": coll.Generation,
			"datasets":   len(coll.Datasets),
			"stations":   coll.Len(),
			"skipped":    coll.Skipped,
		})
	})
}

// selectionQuery holds the instrument filter of a request.
type selectionQuery struct {
	Instruments []string `validate:"max=64,dive,max=128,excludesall=/\\"`
}

// parseSelection accepts repeated and comma-separated instrument parameters.
// A value naming a loaded instrument exactly is kept whole, so instruments
// whose names contain commas stay selectable.
func parseSelection(c *fiber.Ctx, coll *stations.DatasetCollection) (selectionQuery, error) {
	var names []string
	for _, v := range c.Context().QueryArgs().PeekMulti("instrument") {
		value := strings.TrimSpace(string(v))
		if _, ok := coll.Dataset(value); ok {
			names = append(names, value)
			continue
		}
		names = append(names, common.SplitList(value)...)
	}

	q := selectionQuery{Instruments: names}
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

func collection(c *fiber.Ctx, source DatasetSource) (*stations.DatasetCollection, error) {
	coll, err := source.Get(c.UserContext())
	if err != nil {
		log.Printf("ERROR: station data unavailable: %v", err)
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "station data unavailable")
	}
	return coll, nil
}

func workingSet(c *fiber.Ctx, source DatasetSource) (stations.WorkingSet, error) {
	coll, err := collection(c, source)
	if err != nil {
		return stations.WorkingSet{}, err
	}
	q, err := parseSelection(c, coll)
	if err != nil {
		return stations.WorkingSet{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return stations.Select(coll, q.Instruments), nil
}

func instrumentParam(c *fiber.Ctx) (string, error) {
	name, err := url.PathUnescape(c.Params("instrument"))
	if err != nil || name == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid instrument name")
	}
	return name, nil
}

func mapAvailability(maps MapStore, name string) mapView {
	if stations.IsAll(name) {
		return mapView{
			Instrument: name,
			Message:    "PDF maps are available for single instruments only",
		}
	}
	asset, err := maps.Lookup(name)
	if err != nil {
		return mapView{
			Instrument: name,
			Message:    fmt.Sprintf("no PDF map found for instrument: %s", name),
		}
	}
	return mapView{
		Instrument: name,
		Available:  true,
		FileName:   asset.FileName,
		Size:       asset.Size,
		URL:        "/api/v1/maps/" + url.PathEscape(name) + "/pdf",
	}
}
