package main

import "omnetup/internal/omnetup"

func main() {
	omnetup.Main()
}
