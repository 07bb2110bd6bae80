// Package domain turns an hourly OpenWeather forecast into a rain verdict for
// the current local day.
//
// # Data Source
//
// Forecasts come from the OpenWeather One Call 3.0 API
// (https://openweathermap.org/api/one-call-3). The engine reads:
//
//	timezone_offset          seconds east of UTC for the queried location
//	hourly[].dt              unix seconds (UTC) for the start of the hour
//	hourly[].weather[0]      primary condition; only "description" is used
//	hourly[].pop             probability of precipitation, 0..1 (optional)
//	hourly[].rain["1h"]      rain volume for the hour in mm (optional)
//
// Absent pop and rain default to 0.0 in [ParseForecast]. OpenWeather omits the
// "rain" object entirely on dry hours, so the default is the common case.
//
// # Local Day
//
// "Today" is the calendar day at the location, not the next 24 hours. One
// Call returns 48 hourly points; a run at 21:00 local keeps three of them.
//
// # Severity Classification
//
// An hour is rain only when its description contains "rain", "雨" or "雷"
// (case-insensitive). Rain hours are then tiered:
//
//	rain.1h >= 4.0 mm                  heavy
//	rain.1h >= 1.5 mm or pop > 0.6     moderate
//	otherwise                          light
//
// The tiers are a project-specific simplification chosen to pick an email
// template, not a meteorological standard.
//
// Open question carried from the original behavior: an hour described as rain
// with a high pop but no rain.1h figure is at most moderate.
package domain
