package handler

import (
	"html/template"
	"net/http"

	"vigil/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// mapPage renders a Leaflet map over OpenStreetMap tiles. The page polls the
// location feed and moves a single marker to the latest fall position.
const mapPage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>Vigil Monitor</title>
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css" />
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  <style>
    html, body, #map { height: 100%; margin: 0; padding: 0; }
    #banner {
      position: absolute; top: 10px; left: 50px; z-index: 1000;
      background: rgba(255, 255, 255, 0.9); padding: 6px 12px;
      border-radius: 4px; font-family: sans-serif; font-size: 14px;
    }
  </style>
</head>
<body>
  <div id="banner">Waiting for location…</div>
  <div id="map"></div>
  <script>
    var map = L.map('map').setView([{{.Latitude}}, {{.Longitude}}], 16);
    L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
      maxZoom: 19,
      attribution: '&copy; OpenStreetMap contributors'
    }).addTo(map);

    var marker = null;

    function refresh() {
      fetch('/api/monitor/location.geojson')
        .then(function (res) {
          if (!res.ok) { throw new Error('no location'); }
          return res.json();
        })
        .then(function (fc) {
          if (!fc.features || fc.features.length === 0) { return; }
          var f = fc.features[0];
          var lng = f.geometry.coordinates[0];
          var lat = f.geometry.coordinates[1];
          if (marker === null) {
            marker = L.marker([lat, lng]).addTo(map);
          } else {
            marker.setLatLng([lat, lng]);
          }
          map.setView([lat, lng]);
          document.getElementById('banner').textContent =
            'Last event: ' + (f.properties.timestamp || 'unknown');
        })
        .catch(function () {
          document.getElementById('banner').textContent = 'Waiting for location…';
        });
    }

    refresh();
    setInterval(refresh, {{.PollMillis}});
  </script>
</body>
</html>`

var mapTemplate = template.Must(template.New("map").Parse(mapPage))

// mapPageData seeds the initial view. The marker itself always comes from
// the location feed.
type mapPageData struct {
	Latitude   float64
	Longitude  float64
	PollMillis int
}

// MapHandler serves the monitoring map page.
type MapHandler struct {
	uc usecase.MonitorUsecase
}

// NewMapHandler is the constructor for MapHandler, injected by Fx.
func NewMapHandler(uc usecase.MonitorUsecase) *MapHandler {
	return &MapHandler{uc: uc}
}

// MapPage renders the Leaflet map. When a located event exists the map opens
// centered on it; otherwise it opens on a neutral world view.
func (h *MapHandler) MapPage(c echo.Context) error {
	data := mapPageData{Latitude: 0, Longitude: 0, PollMillis: 5000}
	if event, err := h.uc.LatestLocation(); err == nil {
		data.Latitude = event.Location.Latitude
		data.Longitude = event.Location.Longitude
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	if err := mapTemplate.Execute(c.Response(), data); err != nil {
		return errors.WithStack(err)
	}

	return nil
}
