package httpapi

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/climate-station-map/internal/stations"
)

// PageConfig controls the initial view of the dashboard page.
type PageConfig struct {
	Title     string
	CenterLat float64
	CenterLon float64
	Zoom      int
}

type pageData struct {
	PageConfig
	All string
}

// RegisterDashboard serves the interactive map page at "/".
func RegisterDashboard(app *fiber.App, cfg PageConfig) {
	app.Get("/", func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := dashboardTmpl.Execute(&buf, pageData{PageConfig: cfg, All: stations.AllInstruments}); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render dashboard")
		}
		c.Type("html", "utf-8")
		return c.Send(buf.Bytes())
	})
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<link rel="stylesheet" href="https://unpkg.com/leaflet.markercluster@1.5.3/dist/MarkerCluster.css">
<link rel="stylesheet" href="https://unpkg.com/leaflet.markercluster@1.5.3/dist/MarkerCluster.Default.css">
<style>
body { font-family: sans-serif; margin: 0; display: flex; height: 100vh; }
aside { width: 300px; padding: 1rem; overflow-y: auto; border-right: 1px solid #ddd; }
main { flex: 1; display: flex; flex-direction: column; }
#map { flex: 1; min-height: 400px; }
#summary { max-height: 35vh; overflow-y: auto; padding: 0 1rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 2px 6px; text-align: left; }
.info { background: #eef5ff; padding: .5rem; border-radius: 4px; }
#notice { padding: .5rem 1rem; background: #fff4e5; color: #8a4b00; }
#notice:empty { display: none; }
</style>
</head>
<body>
<aside>
  <h2>{{.Title}}</h2>
  <label for="instrument">Instrument</label>
  <select id="instrument"></select>
  <h3>PDF map</h3>
  <div id="download" class="info"></div>
</aside>
<main>
  <div id="notice" role="status"></div>
  <div id="map"></div>
  <div id="summary"></div>
</main>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script src="https://unpkg.com/leaflet.markercluster@1.5.3/dist/leaflet.markercluster.js"></script>
<script>
const ALL = {{.All}};
const map = L.map("map").setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
L.tileLayer("https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png", {
  attribution: "&copy; OpenStreetMap contributors"
}).addTo(map);
let layers = null;
let groups = [];

function el(tag, text) {
  const e = document.createElement(tag);
  if (text !== undefined) e.textContent = text;
  return e;
}

function popup(p) {
  const div = el("div");
  [["Stasiun", p.station], ["Provinsi", p.province], ["Kota", p.city],
   ["Alat", p.instrument], ["Status", p.status]].forEach(([k, v]) => {
    const line = el("div");
    line.appendChild(el("b", k + ": "));
    line.appendChild(document.createTextNode(v));
    div.appendChild(line);
  });
  return div;
}

function renderMap(data) {
  groups.forEach(g => map.removeLayer(g));
  if (layers) map.removeControl(layers);
  groups = [];
  const overlays = {};
  data.clusters.forEach(cl => {
    const group = L.markerClusterGroup();
    cl.markers.forEach(m => {
      L.circleMarker([m.lat, m.lon], { color: m.color, radius: 7, fillOpacity: 0.8 })
        .bindPopup(popup(m.popup), { maxWidth: 250 })
        .addTo(group);
    });
    group.addTo(map);
    groups.push(group);
    overlays[cl.name] = group;
  });
  layers = L.control.layers(null, overlays).addTo(map);
}

function renderDownload(data) {
  const box = document.getElementById("download");
  box.replaceChildren();
  if (!data.map) {
    box.appendChild(el("span", "Select a single instrument to download its PDF map."));
    return;
  }
  if (!data.map.available) {
    box.appendChild(el("span", data.map.message));
    return;
  }
  const a = el("a", "Download " + data.map.fileName);
  a.href = data.map.url;
  box.appendChild(a);
}

function renderSummary(data) {
  const box = document.getElementById("summary");
  box.replaceChildren(el("h3", "Station count"));
  if (!data.rows.length) {
    box.appendChild(el("p", data.message));
    return;
  }
  const table = el("table");
  const head = el("tr");
  ["No", "Instrument", "Province", "Count"].forEach(h => head.appendChild(el("th", h)));
  table.appendChild(head);
  data.rows.forEach(r => {
    const tr = el("tr");
    [r.no, r.instrument, r.province, r.count].forEach(v => tr.appendChild(el("td", String(v))));
    table.appendChild(tr);
  });
  box.appendChild(table);
  box.appendChild(el("p", "Total: " + data.total));
}

function notice(text) {
  document.getElementById("notice").textContent = text || "";
}

async function getJSON(url) {
  const r = await fetch(url);
  let data = null;
  try {
    data = await r.json();
  } catch (e) {
    data = null;
  }
  if (!r.ok) {
    throw new Error((data && data.message) || ("request failed: " + r.status + " " + r.statusText));
  }
  return data;
}

async function refresh() {
  const q = "?instrument=" + encodeURIComponent(document.getElementById("instrument").value);
  try {
    const [clusters, summary] = await Promise.all([
      getJSON("/api/v1/clusters" + q),
      getJSON("/api/v1/summary" + q),
    ]);
    renderMap(clusters);
    renderDownload(clusters);
    renderSummary(summary);
    notice(clusters.message);
  } catch (err) {
    notice(err.message);
  }
}

async function init() {
  let data;
  try {
    data = await getJSON("/api/v1/instruments");
  } catch (err) {
    notice(err.message);
    return;
  }
  const select = document.getElementById("instrument");
  data.instruments.forEach(i => {
    const o = el("option", i.name + " (" + i.stations + ")");
    o.value = i.name;
    select.appendChild(o);
  });
  const all = el("option", "All instruments");
  all.value = ALL;
  select.appendChild(all);
  select.addEventListener("change", refresh);
  refresh();
}

init();
</script>
</body>
</html>
`))
