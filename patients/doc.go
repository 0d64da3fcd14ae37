// Package patients holds the data shapes shared by the patient popup layers.
//
// A preload for one (Technology, key) pair returns three zygosity slices at
// once. They travel together as an Entry so that a reader never observes the
// "all" slice of a variant without its "hetero" and "homo" siblings.
package patients
