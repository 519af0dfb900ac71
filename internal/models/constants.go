package models

// Booking-domain flight statuses. No transition order is enforced.
const (
	StatusScheduled = "SCHEDULED"
	StatusBoarding  = "BOARDING"
	StatusDeparted  = "DEPARTED"
	StatusArrived   = "ARRIVED"
	StatusCancelled = "CANCELLED"
)

// Tracker statuses. Landed and cancelled flights stop moving.
const (
	TrackerStatusEnRoute   = "EN_ROUTE"
	TrackerStatusDelayed   = "DELAYED"
	TrackerStatusLanded    = "LANDED"
	TrackerStatusBoarding  = "BOARDING"
	TrackerStatusScheduled = "SCHEDULED"
	TrackerStatusCancelled = "CANCELLED"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Snapshot keys. The names are kept from the original browser deployment so
// exported snapshots stay readable by it.
const (
	KeyFlights             = "skyHubFlights"
	KeyBookings            = "skyHubBookings"
	KeyUsers               = "skyHubUsers"
	KeyCurrentUser         = "skyHubUser"
	KeyCheckedInPassengers = "checkedInPassengers"
	KeyBookedFlights       = "bookedFlights"
)

const (
	// DefaultTrackerInterval is the simulator tick period in milliseconds.
	DefaultTrackerInterval = 2000

	// DefaultTrackerFlights is how many demo flights the tracker seeds at start.
	DefaultTrackerFlights = 30

	// RateLimitRPS and RateLimitBurst are API rate-limit defaults per client key.
	RateLimitRPS   = 10
	RateLimitBurst = 5
)
