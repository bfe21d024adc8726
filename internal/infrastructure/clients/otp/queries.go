package otp

// Operation names, used for spans, metrics and error messages.
const (
	operationStops     = "stops"
	operationPlan      = "plan"
	operationStopTimes = "stop"
)

const stopsQuery = `
query Stops {
  stops {
    id
    name
    lat
    lon
    code
  }
}
`

const planQuery = `
query PlanTrip(
  $fromLat: Float!, $fromLon: Float!,
  $toLat: Float!, $toLon: Float!,
  $date: String!, $time: String!
) {
  plan(
    from: { lat: $fromLat, lon: $fromLon },
    to: { lat: $toLat, lon: $toLon },
    date: $date,
    time: $time
  ) {
    itineraries {
      duration
      walkDistance
      legs {
        mode
        startTime
        endTime
        distance
        from { name }
        to { name }
        trip {
          routeShortName
          tripHeadsign
          route {
            id
            shortName
            longName
            agency { id name }
          }
        }
        legGeometry { points }
        steps {
          distance
          streetName
        }
      }
    }
  }
}
`

const stopTimesQuery = `
query StopTimes($stopId: String!) {
  stop(id: $stopId) {
    name
    stoptimesWithoutPatterns(numberOfDepartures: 300) {
      scheduledArrival
      realtimeArrival
      scheduledDeparture
      realtimeDeparture
      trip {
        route {
          shortName
          longName
        }
      }
    }
  }
}
`
