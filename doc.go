// Package feed contains the core components of Feed, an epoch-aware data
// feeder for distributed machine-learning training. This root package defines
// types which are employed during the regular use of the feeder, as well as
// in the implementation of new example sources, and is an excellent overview
// of Feed's key concepts.
package feed
