package report

// htmlTemplate is the report page. Styling follows the pipeline's original
// single-file report: header with the effective filters, then one card per
// shortlist entry with the strengths/concerns columns.
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Product Analysis Report</title>
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body {
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
  line-height: 1.6; color: #333; background-color: #f5f5f5; padding: 20px;
}
.container {
  max-width: 1200px; margin: 0 auto; background-color: white;
  padding: 40px; border-radius: 8px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);
}
header { border-bottom: 3px solid #ff9900; padding-bottom: 20px; margin-bottom: 30px; }
h1 { color: #232f3e; font-size: 2.5em; margin-bottom: 15px; }
.filter-params {
  background-color: #f8f9fa; padding: 15px; border-radius: 6px;
  border-left: 4px solid #ff9900;
}
.filter-params h2 { font-size: 1.1em; color: #232f3e; margin-bottom: 10px; }
.filter-grid {
  display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 10px;
}
.filter-item { font-size: 0.9em; }
.filter-label { font-weight: 600; color: #555; }
.product-card {
  border: 1px solid #ddd; border-radius: 8px; margin-bottom: 25px;
  padding: 20px; background-color: #fafafa;
}
.product-header {
  display: flex; gap: 20px; margin-bottom: 20px; padding-bottom: 15px;
  border-bottom: 2px solid #e0e0e0;
}
.product-image img {
  width: 150px; height: 150px; object-fit: contain;
  border: 1px solid #ddd; border-radius: 4px; background-color: white;
}
.product-info { flex-grow: 1; }
.product-title a { color: #0066c0; text-decoration: none; font-size: 1.2em; }
.product-title a:hover { text-decoration: underline; }
.product-meta { display: flex; gap: 20px; margin-top: 10px; flex-wrap: wrap; }
.meta-item { font-size: 0.95em; }
.meta-label { font-weight: 600; color: #555; }
.rating { color: #ff9900; font-weight: 600; }
.price { color: #b12704; font-weight: 600; }
.analysis { display: grid; grid-template-columns: 1fr 1fr; gap: 20px; }
.analysis-column h3 { margin-bottom: 10px; font-size: 1.05em; }
.strengths h3 { color: #067d62; }
.concerns h3 { color: #b12704; }
.analysis-column ul { padding-left: 20px; }
.analysis-column li { margin-bottom: 6px; }
footer { margin-top: 30px; color: #888; font-size: 0.85em; text-align: center; }
</style>
</head>
<body>
<div class="container">
  <header>
    <h1>Product Analysis Report</h1>
    <div class="filter-params">
      <h2>Search Parameters</h2>
      <div class="filter-grid">
        <div class="filter-item"><span class="filter-label">Query:</span> {{.Query}}</div>
        <div class="filter-item"><span class="filter-label">Marketplace:</span> {{.Marketplace}}</div>
        <div class="filter-item"><span class="filter-label">Shipping:</span> {{.ShippingType}}</div>
        <div class="filter-item"><span class="filter-label">Price Range:</span> {{.PriceRange}}</div>
        <div class="filter-item"><span class="filter-label">Min Rating:</span> {{.MinRating}}</div>
        <div class="filter-item"><span class="filter-label">Min Reviews:</span> {{.MinReviews}}</div>
      </div>
    </div>
  </header>

  {{range .Cards}}
  <div class="product-card">
    <div class="product-header">
      <div class="product-image">
        <img src="{{.Thumbnail}}" alt="{{.Title}}">
      </div>
      <div class="product-info">
        <h2 class="product-title"><a href="{{.Link}}" target="_blank">{{.Title}}</a></h2>
        <div class="product-meta">
          <div class="meta-item"><span class="meta-label">ID:</span> {{.ID}}</div>
          <div class="meta-item"><span class="meta-label">Rating:</span> <span class="rating">{{.Rating}}</span></div>
          <div class="meta-item"><span class="meta-label">Reviews:</span> {{.Reviews}}</div>
          <div class="meta-item"><span class="meta-label">Price:</span> <span class="price">{{.Price}}</span></div>
        </div>
      </div>
    </div>
    <div class="analysis">
      <div class="analysis-column strengths">
        <h3>Product Strengths</h3>
        {{if .Strengths}}<ul>{{range .Strengths}}<li>{{.}}</li>{{end}}</ul>{{else}}<p>No strengths identified</p>{{end}}
      </div>
      <div class="analysis-column concerns">
        <h3>Product Concerns</h3>
        {{if .Concerns}}<ul>{{range .Concerns}}<li>{{.}}</li>{{end}}</ul>{{else}}<p>No concerns identified</p>{{end}}
      </div>
    </div>
  </div>
  {{end}}

  <footer>Generated {{.GeneratedAt}} from {{len .Cards}} analyzed products</footer>
</div>
</body>
</html>
`
