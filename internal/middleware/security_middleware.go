package middleware

import "net/http"

// SecurityHeaders adds a standard set of security headers to every response.
// Cache-Control no-store also guarantees the trip API's requirement that
// responses are never reused stale: realtime data is only good the moment it
// is fetched. The CSP allows the Leaflet assets from unpkg and OSM raster
// tiles, which the map page needs; everything else stays same-origin.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' https://unpkg.com; "+
				"style-src 'self' 'unsafe-inline' https://unpkg.com; "+
				"img-src 'self' data: https://*.tile.openstreetmap.org https://unpkg.com; "+
				"connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}
