package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/anurag121124/Weather-Forecast/internal/client"
	"github.com/anurag121124/Weather-Forecast/internal/weather"
)

func main() {
	server := flag.String("server", envOr("WEATHER_SERVER_URL", client.DefaultServerURL), "base URL of the weather API")
	location := flag.String("location", "", "location name, e.g. \"London,uk\"")
	zip := flag.String("zip", "", "postal code, e.g. \"94040,us\"")
	lat := flag.String("lat", "", "latitude")
	lon := flag.String("lon", "", "longitude")
	unitFlag := flag.String("unit", "", "metric or imperial (defaults to the stored preference)")
	setUnit := flag.String("set-unit", "", "store metric or imperial as the preferred unit")
	addFav := flag.String("fav", "", "add a favorite location")
	removeFav := flag.String("unfav", "", "remove a favorite location")
	showPrefs := flag.Bool("prefs", false, "print favorites and recent searches")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.New(*server, &http.Client{Timeout: 30 * time.Second})

	if *setUnit != "" {
		unit, err := weather.ParseUnit(*setUnit)
		if err != nil {
			log.Fatalf("invalid unit: %v", err)
		}
		if err := api.SetUnit(ctx, unit); err != nil {
			log.Fatalf("failed to set unit: %v", err)
		}
		fmt.Printf("preferred unit: %s\n", unit)
	}
	if *addFav != "" {
		favs, err := api.AddFavorite(ctx, *addFav)
		if err != nil {
			log.Fatalf("failed to add favorite: %v", err)
		}
		fmt.Printf("favorites: %s\n", strings.Join(favs, ", "))
	}
	if *removeFav != "" {
		favs, err := api.RemoveFavorite(ctx, *removeFav)
		if err != nil {
			log.Fatalf("failed to remove favorite: %v", err)
		}
		fmt.Printf("favorites: %s\n", strings.Join(favs, ", "))
	}
	if *showPrefs {
		p, err := api.Preferences(ctx)
		if err != nil {
			log.Fatalf("failed to load preferences: %v", err)
		}
		fmt.Printf("unit: %s\nfavorites: %s\nrecent: %s\n",
			p.Unit, strings.Join(p.FavoriteLocations, ", "), strings.Join(p.RecentSearches, ", "))
	}

	var unit weather.Unit
	if *unitFlag != "" {
		u, err := weather.ParseUnit(*unitFlag)
		if err != nil {
			log.Fatalf("invalid unit: %v", err)
		}
		unit = u
	} else if p, err := api.Preferences(ctx); err == nil {
		unit = p.Unit
	} else {
		unit = weather.UnitMetric
	}

	dash := client.NewDashboard(api, nil)

	if *location != "" || *zip != "" || *lat != "" || *lon != "" {
		q, err := buildQuery(*location, *zip, *lat, *lon)
		if err != nil {
			log.Fatal(err)
		}
		v, _ := dash.Search(ctx, q, unit)
		client.RenderView(os.Stdout, v)
		if v.Err != nil {
			os.Exit(1)
		}
		return
	}

	if *setUnit != "" || *addFav != "" || *removeFav != "" || *showPrefs {
		return
	}
	interactive(ctx, dash, unit)
}

// interactive reads one location per line. Each line starts a search without
// waiting for the previous one; only the newest result is printed.
func interactive(ctx context.Context, dash *client.Dashboard, unit weather.Unit) {
	fmt.Println("enter a location name, a postal code (zip:94040,us) or coordinates (lat,lon); ctrl-d to quit")

	var out sync.Mutex
	var wg sync.WaitGroup
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		q, err := parseLine(line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			v, ok := dash.Search(ctx, q, unit)
			if !ok {
				return
			}
			out.Lock()
			defer out.Unlock()
			client.RenderView(os.Stdout, v)
			fmt.Println()
		}()
	}
	wg.Wait()
}

func parseLine(line string) (weather.LocationQuery, error) {
	if code, ok := strings.CutPrefix(line, "zip:"); ok {
		return buildQuery("", code, "", "")
	}
	if parts := strings.Split(line, ","); len(parts) == 2 {
		if _, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err == nil {
			return buildQuery("", "", strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
		}
	}
	return buildQuery(line, "", "", "")
}

func buildQuery(location, zip, lat, lon string) (weather.LocationQuery, error) {
	q := weather.LocationQuery{Name: strings.TrimSpace(location), PostalCode: strings.TrimSpace(zip)}
	if lat != "" {
		v, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			return q, weather.InvalidInput("lat must be a number")
		}
		q.Lat = &v
	}
	if lon != "" {
		v, err := strconv.ParseFloat(lon, 64)
		if err != nil {
			return q, weather.InvalidInput("lon must be a number")
		}
		q.Lon = &v
	}
	return q, q.Validate()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
