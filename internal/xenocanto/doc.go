// Package xenocanto provides a client for the xeno-canto search API.
//
// The API is open, unauthenticated and page-based:
//
//	GET https://xeno-canto.org/api/2/recordings?query=<url-encoded>[&page=<n>]
//
// Each page returns JSON with numRecordings and numPages totals (as numbers
// or numeric strings, depending on deployment) and a recordings list whose
// objects use short field keys (gen, sp, ssp, en, rec, cnt, loc, lat, lng,
// type, file, lic, url, q, time, date). Records may omit any subset of keys.
//
// # Searching
//
//	client := xenocanto.NewClient(httpClient, xenocanto.DefaultSearchURL)
//	result, err := client.Search(ctx, "Phaethornis anthophilus")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The result holds one normalized record list per page, ready for
// model.NewManifest.
//
// # Normalization
//
// The dto subpackage declares the payload schema with optional (*string)
// fields, so a missing key and a present-but-empty value stay
// distinguishable after parsing. dto.Recording.ToRecording converts to the
// model type without altering any present value.
package xenocanto
