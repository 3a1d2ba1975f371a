package dashboard

import "github.com/weatherdash/weatherdash/internal/weather"

// KoreaPreset returns the 17 Korean cities loaded by the preset button, named
// in Hangul as the backend stores them.
func KoreaPreset() []weather.NewLocation {
	return []weather.NewLocation{
		{Name: "서울", Latitude: 37.5665, Longitude: 126.978},
		{Name: "부산", Latitude: 35.1796, Longitude: 129.0756},
		{Name: "대구", Latitude: 35.8714, Longitude: 128.6014},
		{Name: "인천", Latitude: 37.4563, Longitude: 126.7052},
		{Name: "광주", Latitude: 35.1595, Longitude: 126.8526},
		{Name: "대전", Latitude: 36.3504, Longitude: 127.3845},
		{Name: "울산", Latitude: 35.5384, Longitude: 129.3114},
		{Name: "세종", Latitude: 36.4801, Longitude: 127.289},
		{Name: "수원", Latitude: 37.2636, Longitude: 127.0286},
		{Name: "춘천", Latitude: 37.8813, Longitude: 127.7298},
		{Name: "청주", Latitude: 36.6424, Longitude: 127.489},
		{Name: "전주", Latitude: 35.8242, Longitude: 127.148},
		{Name: "창원", Latitude: 35.2279, Longitude: 128.6811},
		{Name: "제주", Latitude: 33.4996, Longitude: 126.5312},
		{Name: "포항", Latitude: 36.019, Longitude: 129.3435},
		{Name: "강릉", Latitude: 37.7519, Longitude: 128.8761},
		{Name: "목포", Latitude: 34.8118, Longitude: 126.3922},
	}
}
